package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/film-catalog/internal/model"
)

type CommentRepo interface {
	WithTx(tx *gorm.DB) CommentRepo
	Create(ctx context.Context, comment *model.Comment) error
	ListByKey(ctx context.Context, key string) ([]model.Comment, error)
	DeleteByKey(ctx context.Context, key string) (int, error)
}

type commentRepoGorm struct {
	db *gorm.DB
}

var _ CommentRepo = (*commentRepoGorm)(nil)

func NewCommentRepoGorm(db *gorm.DB) *commentRepoGorm {
	return &commentRepoGorm{
		db: db,
	}
}

func (r *commentRepoGorm) WithTx(tx *gorm.DB) CommentRepo {
	return &commentRepoGorm{
		db: tx,
	}
}

func (r *commentRepoGorm) Create(ctx context.Context, comment *model.Comment) error {
	return gorm.G[model.Comment](r.db).Create(ctx, comment)
}

// ListByKey returns newest dates first; same-day comments keep insertion order.
func (r *commentRepoGorm) ListByKey(ctx context.Context, key string) ([]model.Comment, error) {
	comments, err := gorm.G[model.Comment](r.db).
		Where(&model.Comment{Key: key}).
		Order("date DESC, id ASC").
		Find(ctx)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepoGorm) DeleteByKey(ctx context.Context, key string) (int, error) {
	return gorm.G[model.Comment](r.db).
		Where(&model.Comment{Key: key}).
		Delete(ctx)
}
