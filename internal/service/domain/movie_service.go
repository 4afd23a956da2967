package domain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/enrichment"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/repository"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

// MovieForm is the add-movie input, and after enrichment the canonical record.
type MovieForm struct {
	Title       string  `json:"title" validate:"notblank" msg:"Title is required."`
	Year        int     `json:"year" validate:"min=1880,max=2100" msg:"Enter a valid year."`
	DurationMin int     `json:"durationMin" validate:"min=1" msg:"Enter a valid duration in minutes."`
	ReleaseDate string  `json:"releaseDate" validate:"notblank" msg:"Release date is required."`
	Rating      float64 `json:"rating" validate:"min=0,max=10" msg:"Rating must be between 0 and 10."`
	Director    string  `json:"director" validate:"notblank" msg:"Director is required."`
	Poster      string  `json:"poster" validate:"omitempty,url" msg:"Poster must be a URL."`
}

type MovieDetail struct {
	Movie      model.Movie        `json:"movie"`
	Enrichment *enrichment.Record `json:"enrichment"`
	Comments   []model.Comment    `json:"comments"`
}

type Enricher interface {
	Lookup(ctx context.Context, title string, year int) *enrichment.Record
}

// CatalogNotifier announces that a user's owned movies changed.
type CatalogNotifier interface {
	CatalogChanged(ctx context.Context, userID string) error
}

type MovieService interface {
	Catalog(ctx context.Context, userID string) ([]model.Movie, error)
	Movie(ctx context.Context, userID string, id int) (*model.Movie, error)
	Detail(ctx context.Context, userID string, id int) (*MovieDetail, error)
	AddMovie(ctx context.Context, userID string, form MovieForm) (*model.Movie, error)
	RemoveMovie(ctx context.Context, userID string, movieID int) error
}

type movieService struct {
	db       *gorm.DB
	base     *catalog.BaseCatalog
	repo     repository.MovieRepo
	lists    repository.ListRepo
	comments repository.CommentRepo

	commentService CommentService
	enricher       Enricher
	notifier       CatalogNotifier
	log            *zap.Logger
}

var _ MovieService = (*movieService)(nil)

func NewMovieService(
	db *gorm.DB,
	base *catalog.BaseCatalog,
	movieRepo repository.MovieRepo,
	listRepo repository.ListRepo,
	commentRepo repository.CommentRepo,
	commentService CommentService,
	enricher Enricher,
	notifier CatalogNotifier,
	log *zap.Logger,
) *movieService {
	return &movieService{
		db:             db,
		base:           base,
		repo:           movieRepo,
		lists:          listRepo,
		comments:       commentRepo,
		commentService: commentService,
		enricher:       enricher,
		notifier:       notifier,
		log:            log,
	}
}

// Catalog returns the base catalog merged with the user's own movies. An
// empty userID yields the base catalog alone.
func (s *movieService) Catalog(ctx context.Context, userID string) ([]model.Movie, error) {
	base, err := s.base.Load(ctx)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return base, nil
	}

	own, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(base, catalog.UserMovies(own)), nil
}

func (s *movieService) Movie(ctx context.Context, userID string, id int) (*model.Movie, error) {
	movies, err := s.Catalog(ctx, userID)
	if err != nil {
		return nil, err
	}
	movie, ok := catalog.Find(id, movies)
	if !ok {
		return nil, service.ErrNotFound
	}
	return &movie, nil
}

func (s *movieService) Detail(ctx context.Context, userID string, id int) (*MovieDetail, error) {
	movie, err := s.Movie(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentService.List(ctx, *movie)
	if err != nil {
		return nil, err
	}

	detail := &MovieDetail{
		Movie:    *movie,
		Comments: comments,
	}
	if s.enricher != nil {
		detail.Enrichment = s.enricher.Lookup(ctx, movie.Title, movie.Year)
	}
	return detail, nil
}

func (s *movieService) AddMovie(ctx context.Context, userID string, form MovieForm) (*model.Movie, error) {
	if userID == "" {
		return nil, service.ErrAuthRequired
	}

	form.Title = strings.TrimSpace(form.Title)
	form.ReleaseDate = strings.TrimSpace(form.ReleaseDate)
	form.Director = strings.TrimSpace(form.Director)
	form.Poster = strings.TrimSpace(form.Poster)
	if err := validation.Struct(&form); err != nil {
		return nil, err
	}

	canonical := form
	if s.enricher != nil {
		if rec := s.enricher.Lookup(ctx, form.Title, form.Year); rec != nil {
			canonical = overlay(form, rec)
		} else {
			s.log.Debug("no enrichment match, using form data", zap.String("title", form.Title), zap.Int("year", form.Year))
		}
	}
	if err := validation.Struct(&canonical); err != nil {
		return nil, err
	}

	base, err := s.base.Load(ctx)
	if err != nil {
		return nil, err
	}

	row := &model.UserMovie{
		OwnerID:     userID,
		Title:       canonical.Title,
		Year:        canonical.Year,
		DurationMin: strconv.Itoa(canonical.DurationMin),
		ReleaseDate: canonical.ReleaseDate,
		Rating:      strconv.FormatFloat(canonical.Rating, 'f', -1, 64),
		Director:    canonical.Director,
		Poster:      canonical.Poster,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		movies := s.repo.WithTx(tx)
		if err := movies.LockIdentity(ctx); err != nil {
			return fmt.Errorf("lock movie identity: %w", err)
		}

		own, err := movies.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if _, dup := catalog.FindDuplicate(row.Title, row.Year, catalog.Merge(base, catalog.UserMovies(own))); dup {
			return service.ErrDuplicateMovie
		}

		// the same movie owned by someone else keeps its identity
		existing, err := movies.FindByTitleYear(ctx, row.Title, row.Year)
		switch {
		case err == nil:
			row.MovieID = existing.MovieID
		case errors.Is(err, gorm.ErrRecordNotFound):
			all, err := movies.ListAll(ctx)
			if err != nil {
				return err
			}
			row.MovieID = catalog.NextIdentity(base, catalog.UserMovies(all))
		default:
			return err
		}

		return movies.Create(ctx, row)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, service.ErrDuplicateMovie
		}
		return nil, err
	}

	s.log.Info("user movie added",
		zap.String("user_id", userID),
		zap.Int("movie_id", row.MovieID),
		zap.String("title", row.Title),
	)
	s.announce(ctx, userID)

	movie := row.ToMovie()
	return &movie, nil
}

// RemoveMovie deletes an owned movie together with its favorites and watched
// entries and its comment thread, in one transaction.
func (s *movieService) RemoveMovie(ctx context.Context, userID string, movieID int) error {
	if userID == "" {
		return service.ErrAuthRequired
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		movies := s.repo.WithTx(tx)
		row, err := movies.GetByOwnerAndID(ctx, userID, movieID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return service.ErrNotFound
			}
			return err
		}

		if _, err := movies.Delete(ctx, userID, movieID); err != nil {
			return fmt.Errorf("delete movie: %w", err)
		}
		if _, err := s.lists.WithTx(tx).RemoveMovie(ctx, userID, movieID); err != nil {
			return fmt.Errorf("delete list entries: %w", err)
		}
		if _, err := s.comments.WithTx(tx).DeleteByKey(ctx, catalog.CommentKey(row.ToMovie())); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("user movie removed", zap.String("user_id", userID), zap.Int("movie_id", movieID))
	s.announce(ctx, userID)
	return nil
}

func (s *movieService) announce(ctx context.Context, userID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.CatalogChanged(ctx, userID); err != nil {
		s.log.Warn("catalog change not published", zap.String("user_id", userID), zap.Error(err))
	}
}

// overlay lets every known enrichment field replace the form value.
func overlay(form MovieForm, rec *enrichment.Record) MovieForm {
	out := form
	out.Title = rec.Title.Or(form.Title)
	if year, ok := rec.YearInt(); ok {
		out.Year = year
	}
	if runtime, ok := rec.RuntimeMin(); ok {
		out.DurationMin = runtime
	}
	if released, ok := rec.ReleasedISO(); ok {
		out.ReleaseDate = released
	}
	if rating, ok := rec.RatingValue(); ok {
		out.Rating = rating
	}
	out.Director = rec.Director.Or(form.Director)
	out.Poster = rec.Poster.Or(form.Poster)
	return out
}
