package domain

import (
	"context"

	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/repository"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

// ListService manages the favorites and watched sets. Both kinds behave the
// same way.
type ListService interface {
	Add(ctx context.Context, userID string, kind model.ListKind, movieID int) (added bool, err error)
	Remove(ctx context.Context, userID string, kind model.ListKind, movieID int) error
	Contains(ctx context.Context, userID string, kind model.ListKind, movieID int) (bool, error)
	IDs(ctx context.Context, userID string, kind model.ListKind) ([]int, error)
	Clear(ctx context.Context, userID string, kind model.ListKind) error
	Movies(ctx context.Context, userID string, kind model.ListKind, search string) ([]model.Movie, error)
}

type listService struct {
	repo         repository.ListRepo
	movieService MovieService
}

var _ ListService = (*listService)(nil)

func NewListService(listRepo repository.ListRepo, movieService MovieService) *listService {
	return &listService{
		repo:         listRepo,
		movieService: movieService,
	}
}

func checkList(userID string, kind model.ListKind) error {
	if userID == "" {
		return service.ErrAuthRequired
	}
	if !kind.Valid() {
		return validation.New("kind", "List must be favorites or watched.")
	}
	return nil
}

// Add reports false when the movie is already in the list.
func (s *listService) Add(ctx context.Context, userID string, kind model.ListKind, movieID int) (bool, error) {
	if err := checkList(userID, kind); err != nil {
		return false, err
	}
	if _, err := s.movieService.Movie(ctx, userID, movieID); err != nil {
		return false, err
	}
	return s.repo.Add(ctx, &model.MovieListEntry{
		OwnerID: userID,
		Kind:    kind,
		MovieID: movieID,
	})
}

func (s *listService) Remove(ctx context.Context, userID string, kind model.ListKind, movieID int) error {
	if err := checkList(userID, kind); err != nil {
		return err
	}
	_, err := s.repo.Remove(ctx, userID, kind, movieID)
	return err
}

func (s *listService) Contains(ctx context.Context, userID string, kind model.ListKind, movieID int) (bool, error) {
	if err := checkList(userID, kind); err != nil {
		return false, err
	}
	return s.repo.Contains(ctx, userID, kind, movieID)
}

func (s *listService) IDs(ctx context.Context, userID string, kind model.ListKind) ([]int, error) {
	if err := checkList(userID, kind); err != nil {
		return nil, err
	}
	return s.repo.ListIDs(ctx, userID, kind)
}

func (s *listService) Clear(ctx context.Context, userID string, kind model.ListKind) error {
	if err := checkList(userID, kind); err != nil {
		return err
	}
	_, err := s.repo.Clear(ctx, userID, kind)
	return err
}

// Movies resolves the list against the user's catalog, filtered by title and
// sorted by title. Ids that no longer resolve are skipped.
func (s *listService) Movies(ctx context.Context, userID string, kind model.ListKind, search string) ([]model.Movie, error) {
	ids, err := s.IDs(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	movies, err := s.movieService.Catalog(ctx, userID)
	if err != nil {
		return nil, err
	}

	resolved := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := catalog.Find(id, movies); ok {
			resolved = append(resolved, m)
		}
	}
	out := catalog.Query{Search: search}.Apply(resolved)
	catalog.SortByTitle(out)
	return out, nil
}
