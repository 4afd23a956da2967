package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs-lzh/film-catalog/internal/model"
)

// ListRepo stores the favorites and watched sets. Both kinds share one table.
type ListRepo interface {
	WithTx(tx *gorm.DB) ListRepo
	Add(ctx context.Context, entry *model.MovieListEntry) (added bool, err error)
	Remove(ctx context.Context, ownerID string, kind model.ListKind, movieID int) (int, error)
	RemoveMovie(ctx context.Context, ownerID string, movieID int) (int, error)
	Contains(ctx context.Context, ownerID string, kind model.ListKind, movieID int) (bool, error)
	ListIDs(ctx context.Context, ownerID string, kind model.ListKind) ([]int, error)
	Clear(ctx context.Context, ownerID string, kind model.ListKind) (int, error)
}

type listRepoGorm struct {
	db *gorm.DB
}

var _ ListRepo = (*listRepoGorm)(nil)

func NewListRepoGorm(db *gorm.DB) *listRepoGorm {
	return &listRepoGorm{
		db: db,
	}
}

func (r *listRepoGorm) WithTx(tx *gorm.DB) ListRepo {
	return &listRepoGorm{
		db: tx,
	}
}

// Add reports false without error when the entry already exists.
func (r *listRepoGorm) Add(ctx context.Context, entry *model.MovieListEntry) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *listRepoGorm) Remove(ctx context.Context, ownerID string, kind model.ListKind, movieID int) (int, error) {
	return gorm.G[model.MovieListEntry](r.db).
		Where(&model.MovieListEntry{OwnerID: ownerID, Kind: kind, MovieID: movieID}).
		Delete(ctx)
}

func (r *listRepoGorm) RemoveMovie(ctx context.Context, ownerID string, movieID int) (int, error) {
	return gorm.G[model.MovieListEntry](r.db).
		Where(&model.MovieListEntry{OwnerID: ownerID, MovieID: movieID}).
		Delete(ctx)
}

func (r *listRepoGorm) Contains(ctx context.Context, ownerID string, kind model.ListKind, movieID int) (bool, error) {
	n, err := gorm.G[model.MovieListEntry](r.db).
		Where(&model.MovieListEntry{OwnerID: ownerID, Kind: kind, MovieID: movieID}).
		Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *listRepoGorm) ListIDs(ctx context.Context, ownerID string, kind model.ListKind) ([]int, error) {
	entries, err := gorm.G[model.MovieListEntry](r.db).
		Where(&model.MovieListEntry{OwnerID: ownerID, Kind: kind}).
		Order("created_at, movie_id").
		Find(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MovieID)
	}
	return ids, nil
}

func (r *listRepoGorm) Clear(ctx context.Context, ownerID string, kind model.ListKind) (int, error) {
	return gorm.G[model.MovieListEntry](r.db).
		Where(&model.MovieListEntry{OwnerID: ownerID, Kind: kind}).
		Delete(ctx)
}
