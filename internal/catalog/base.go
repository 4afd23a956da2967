package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/qs-lzh/film-catalog/internal/model"
)

var ErrCatalogUnavailable = errors.New("base catalog unavailable")

// Loader fetches the raw base catalog.
type Loader interface {
	Load(ctx context.Context) ([]model.Movie, error)
}

type LoaderFunc func(ctx context.Context) ([]model.Movie, error)

func (f LoaderFunc) Load(ctx context.Context) ([]model.Movie, error) {
	return f(ctx)
}

// BaseCatalog memoizes the first successful load for its own lifetime. A
// failed load is reported and not cached, so the next call tries again.
type BaseCatalog struct {
	loader Loader
	now    func() time.Time

	mu       sync.Mutex
	movies   []model.Movie
	loaded   bool
	loadedAt time.Time
}

type Option func(*BaseCatalog)

func WithClock(now func() time.Time) Option {
	return func(c *BaseCatalog) {
		c.now = now
	}
}

func NewBaseCatalog(loader Loader, opts ...Option) *BaseCatalog {
	c := &BaseCatalog{
		loader: loader,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the memoized catalog. Callers get a copy.
func (c *BaseCatalog) Load(ctx context.Context) ([]model.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		movies, err := c.loader.Load(ctx)
		if err != nil {
			if errors.Is(err, ErrCatalogUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		c.movies = movies
		c.loaded = true
		c.loadedAt = c.now()
	}

	out := make([]model.Movie, len(c.movies))
	copy(out, c.movies)
	return out, nil
}

// LoadedAt reports when the memo was filled; zero before the first success.
func (c *BaseCatalog) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}

// FileLoader reads a JSON array of movie objects from disk.
func FileLoader(path string) Loader {
	return LoaderFunc(func(ctx context.Context) ([]model.Movie, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		defer f.Close()
		return Decode(f)
	})
}

// Decode parses a base catalog payload. Fields may be numbers or strings;
// descriptive fields become strings, ids and years that are not numeric
// become 0. Non-object array elements are skipped.
func Decode(r io.Reader) ([]model.Movie, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: payload is not an array", ErrCatalogUnavailable)
	}

	movies := make([]model.Movie, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		movies = append(movies, model.Movie{
			ID:          intField(obj["id"]),
			Title:       textField(obj["title"]),
			Year:        intField(obj["year"]),
			DurationMin: textField(obj["durationMin"]),
			ReleaseDate: textField(obj["releaseDate"]),
			Rating:      textField(obj["rating"]),
			Director:    textField(obj["director"]),
			Poster:      textField(obj["poster"]),
			Source:      model.SourceBase,
		})
	}
	return movies, nil
}

func textField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func intField(v any) int {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	// int(f) is implementation-defined outside the int range
	if f >= math.MaxInt || f < math.MinInt {
		return 0
	}
	return int(f)
}
