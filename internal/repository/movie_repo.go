package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/util"
)

// MovieRepo stores user-owned movies. Base movies never reach the database.
type MovieRepo interface {
	WithTx(tx *gorm.DB) MovieRepo
	Create(ctx context.Context, movie *model.UserMovie) error
	GetByOwnerAndID(ctx context.Context, ownerID string, movieID int) (*model.UserMovie, error)
	FindByTitleYear(ctx context.Context, title string, year int) (*model.UserMovie, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.UserMovie, error)
	ListAll(ctx context.Context) ([]model.UserMovie, error)
	Delete(ctx context.Context, ownerID string, movieID int) (int, error)
	// LockIdentity blocks until no other transaction holds the minting lock.
	// It only makes sense on a repo bound to a transaction.
	LockIdentity(ctx context.Context) error
}

type movieRepoGorm struct {
	db *gorm.DB
}

var _ MovieRepo = (*movieRepoGorm)(nil)

func NewMovieRepoGorm(db *gorm.DB) *movieRepoGorm {
	return &movieRepoGorm{
		db: db,
	}
}

func (r *movieRepoGorm) WithTx(tx *gorm.DB) MovieRepo {
	return &movieRepoGorm{
		db: tx,
	}
}

func (r *movieRepoGorm) Create(ctx context.Context, movie *model.UserMovie) error {
	movie.TitleKey = util.Normalize(movie.Title)
	return gorm.G[model.UserMovie](r.db).Create(ctx, movie)
}

func (r *movieRepoGorm) GetByOwnerAndID(ctx context.Context, ownerID string, movieID int) (*model.UserMovie, error) {
	movie, err := gorm.G[model.UserMovie](r.db).
		Where(&model.UserMovie{OwnerID: ownerID, MovieID: movieID}).
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// FindByTitleYear looks across every owner; the oldest match wins.
func (r *movieRepoGorm) FindByTitleYear(ctx context.Context, title string, year int) (*model.UserMovie, error) {
	movie, err := gorm.G[model.UserMovie](r.db).
		Where("title_key = ? AND year = ?", util.Normalize(title), year).
		Order("id").
		First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepoGorm) ListByOwner(ctx context.Context, ownerID string) ([]model.UserMovie, error) {
	movies, err := gorm.G[model.UserMovie](r.db).
		Where(&model.UserMovie{OwnerID: ownerID}).
		Order("id").
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepoGorm) ListAll(ctx context.Context) ([]model.UserMovie, error) {
	movies, err := gorm.G[model.UserMovie](r.db).Order("id").Find(ctx)
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (r *movieRepoGorm) Delete(ctx context.Context, ownerID string, movieID int) (int, error) {
	return gorm.G[model.UserMovie](r.db).
		Where(&model.UserMovie{OwnerID: ownerID, MovieID: movieID}).
		Delete(ctx)
}

func (r *movieRepoGorm) LockIdentity(ctx context.Context) error {
	lock := model.IdentityLock{Name: model.MovieIdentityLock}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&lock).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("name = ?", lock.Name).
		First(&lock).Error
}
