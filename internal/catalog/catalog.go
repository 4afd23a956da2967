// Package catalog reconciles the shared base catalog with movies owned by
// individual users: merging, identity minting, duplicate detection and the
// comment key that groups discussion threads.
package catalog

import (
	"strconv"

	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/util"
)

// Merge returns base movies followed by the user's own movies. Duplicates are
// kept; they are rejected before insertion instead.
func Merge(base, user []model.Movie) []model.Movie {
	merged := make([]model.Movie, 0, len(base)+len(user))
	merged = append(merged, base...)
	merged = append(merged, user...)
	return merged
}

// NextIdentity returns one more than the largest id in either input. Missing
// or malformed ids are stored as 0 and so never win.
func NextIdentity(base, user []model.Movie) int {
	maxID := 0
	for _, set := range [][]model.Movie{base, user} {
		for _, m := range set {
			if m.ID > maxID {
				maxID = m.ID
			}
		}
	}
	return maxID + 1
}

// FindDuplicate matches on normalized title and exact year. The first match in
// catalog order is returned.
func FindDuplicate(title string, year int, movies []model.Movie) (model.Movie, bool) {
	key := util.Normalize(title)
	for _, m := range movies {
		if m.Year == year && util.Normalize(m.Title) == key {
			return m, true
		}
	}
	return model.Movie{}, false
}

// CommentKey is id-based for base movies and content-based for user movies, so
// every copy of the same user movie shares one thread.
func CommentKey(m model.Movie) string {
	if m.Source == model.SourceUser {
		return util.Normalize(m.Title) + ":" + strconv.Itoa(m.Year)
	}
	return strconv.Itoa(m.ID)
}

// Find returns the first movie with the given id.
func Find(id int, movies []model.Movie) (model.Movie, bool) {
	for _, m := range movies {
		if m.ID == id {
			return m, true
		}
	}
	return model.Movie{}, false
}

func UserMovies(rows []model.UserMovie) []model.Movie {
	movies := make([]model.Movie, 0, len(rows))
	for _, r := range rows {
		movies = append(movies, r.ToMovie())
	}
	return movies
}
