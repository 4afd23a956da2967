package enrichment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/qs-lzh/film-catalog/internal/cache"
)

var errCallerGone = errors.New("omdb: caller context done")

// Cache is the best-effort store for lookup results.
type Cache interface {
	Read(ctx context.Context, key string, dest any) bool
	Write(ctx context.Context, key string, value any, expiration time.Duration)
}

type Options struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client queries OMDb behind a circuit breaker. Lookup never returns an error;
// callers treat a nil record as "no match".
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	ttl     time.Duration
	cache   Cache
	cb      *gobreaker.CircuitBreaker[*Record]
	log     *zap.Logger
}

func NewClient(opts Options, c Cache, log *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*Record](gobreaker.Settings{
		Name:        "omdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		// a caller that went away says nothing about OMDb's health
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerGone)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/") + "/",
		apiKey:  opts.APIKey,
		ttl:     opts.CacheTTL,
		cache:   c,
		cb:      cb,
		log:     log,
	}
}

// Lookup finds a movie by title and, when year > 0, release year.
func (c *Client) Lookup(ctx context.Context, title string, year int) *Record {
	title = strings.TrimSpace(title)
	if title == "" || year < 0 {
		return nil
	}

	key := cache.MakeOMDbDetailsKey(title, year)
	var cached Record
	if c.cache != nil && c.cache.Read(ctx, key, &cached) {
		return &cached
	}

	if c.apiKey == "" {
		c.log.Debug("omdb lookup skipped, no api key")
		return nil
	}

	if ctx.Err() != nil {
		return nil
	}

	record, err := c.cb.Execute(func() (*Record, error) {
		record, err := c.fetch(ctx, title, year)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", errCallerGone, err)
		}
		return record, err
	})
	if err != nil {
		switch {
		case errors.Is(err, errCallerGone):
			c.log.Debug("omdb lookup abandoned by caller", zap.String("title", title), zap.Error(err))
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			c.log.Warn("omdb lookup rejected", zap.Error(err))
		default:
			c.log.Warn("omdb lookup failed", zap.String("title", title), zap.Int("year", year), zap.Error(err))
		}
		return nil
	}
	if record == nil {
		return nil
	}

	if c.cache != nil {
		c.cache.Write(ctx, key, record, c.ttl)
		if record.Poster.Known() {
			c.cache.Write(ctx, cache.MakeOMDbPosterKey(title, year), record.Poster.Value(), c.ttl)
		}
	}
	return record
}

// Poster returns the poster URL of the best match, or "" when there is none.
func (c *Client) Poster(ctx context.Context, title string, year int) string {
	var poster string
	if c.cache != nil && c.cache.Read(ctx, cache.MakeOMDbPosterKey(title, year), &poster) && poster != "" {
		return poster
	}
	record := c.Lookup(ctx, title, year)
	if record == nil {
		return ""
	}
	return record.Poster.Value()
}

// fetch returns (nil, nil) when OMDb answers but has no match, so that a
// "not found" does not count against the breaker.
func (c *Client) fetch(ctx context.Context, title string, year int) (*Record, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("t", title)
	if year > 0 {
		q.Set("y", strconv.Itoa(year))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("omdb: unexpected status %d", resp.StatusCode)
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("omdb: decode response: %w", err)
	}
	if body.Response != "True" {
		c.log.Debug("omdb no match", zap.String("title", title), zap.Int("year", year), zap.String("reason", body.Error))
		return nil, nil
	}
	return body.record(), nil
}
