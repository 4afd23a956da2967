package catalog

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/util"
)

type SortKey string

const (
	SortNone        SortKey = ""
	SortTitle       SortKey = "title"
	SortRating      SortKey = "rating"
	SortReleaseDate SortKey = "releasedate"
	SortDuration    SortKey = "duration"
	SortYear        SortKey = "year"
)

func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(util.Normalize(s)); k {
	case SortNone, SortTitle, SortRating, SortReleaseDate, SortDuration, SortYear:
		return k, true
	}
	return SortNone, false
}

// Query filters by title substring and orders the result. The zero value keeps
// catalog order.
type Query struct {
	Search string
	SortBy SortKey
	Desc   bool
}

func (q Query) Apply(movies []model.Movie) []model.Movie {
	needle := util.Normalize(q.Search)
	out := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if needle == "" || strings.Contains(util.Normalize(m.Title), needle) {
			out = append(out, m)
		}
	}

	if q.SortBy == SortNone {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.Movie) int {
		c := compareBy(q.SortBy, a, b)
		if q.Desc {
			return -c
		}
		return c
	})
	return out
}

// SortByTitle orders case-insensitively, ascending.
func SortByTitle(movies []model.Movie) {
	slices.SortStableFunc(movies, func(a, b model.Movie) int {
		return compareBy(SortTitle, a, b)
	})
}

func compareBy(key SortKey, a, b model.Movie) int {
	switch key {
	case SortTitle:
		return strings.Compare(util.Normalize(a.Title), util.Normalize(b.Title))
	case SortRating:
		return cmp.Compare(number(a.Rating), number(b.Rating))
	case SortDuration:
		return cmp.Compare(number(a.DurationMin), number(b.DurationMin))
	case SortReleaseDate:
		return strings.Compare(a.ReleaseDate, b.ReleaseDate)
	case SortYear:
		return cmp.Compare(a.Year, b.Year)
	}
	return 0
}

// unknown numbers sort first
func number(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return -1
	}
	return f
}
