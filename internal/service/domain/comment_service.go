package domain

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/repository"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

const (
	MinCommentLen = 2
	MaxCommentLen = 200
)

type CommentService interface {
	Add(ctx context.Context, movie model.Movie, author, text string) (*model.Comment, error)
	List(ctx context.Context, movie model.Movie) ([]model.Comment, error)
}

type commentService struct {
	repo repository.CommentRepo
	now  func() time.Time
}

var _ CommentService = (*commentService)(nil)

func NewCommentService(commentRepo repository.CommentRepo, now func() time.Time) *commentService {
	if now == nil {
		now = time.Now
	}
	return &commentService{
		repo: commentRepo,
		now:  now,
	}
}

func (s *commentService) Add(ctx context.Context, movie model.Movie, author, text string) (*model.Comment, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, service.ErrAuthRequired
	}

	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < MinCommentLen || n > MaxCommentLen {
		return nil, validation.New("text", "Comment must be between 2 and 200 characters.")
	}

	comment := &model.Comment{
		Key:    catalog.CommentKey(movie),
		Author: author,
		Date:   s.now().Format(time.DateOnly),
		Text:   text,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *commentService) List(ctx context.Context, movie model.Movie) ([]model.Comment, error) {
	return s.repo.ListByKey(ctx, catalog.CommentKey(movie))
}
