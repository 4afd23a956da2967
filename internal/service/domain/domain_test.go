package domain

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/cache"
	"github.com/qs-lzh/film-catalog/internal/enrichment"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/repository"
	"github.com/qs-lzh/film-catalog/internal/testinfra"
	"github.com/qs-lzh/film-catalog/internal/util"
)

type fakeEnricher struct {
	records map[string]*enrichment.Record
}

func (f *fakeEnricher) Lookup(ctx context.Context, title string, year int) *enrichment.Record {
	if f == nil {
		return nil
	}
	return f.records[enrichKey(title, year)]
}

func enrichKey(title string, year int) string {
	return util.Normalize(title) + ":" + strconv.Itoa(year)
}

type fakeNotifier struct {
	mu    sync.Mutex
	users []string
}

func (f *fakeNotifier) CatalogChanged(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return nil
}

func (f *fakeNotifier) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.users...)
}

type fixture struct {
	db       *gorm.DB
	kv       *cache.RedisCache
	redis    *miniredis.Miniredis
	enricher *fakeEnricher
	notifier *fakeNotifier

	auth     *authService
	movies   *movieService
	lists    *listService
	comments *commentService

	movieRepo   repository.MovieRepo
	listRepo    repository.ListRepo
	commentRepo repository.CommentRepo
}

var testBase = []model.Movie{
	{ID: 1, Title: "Dune", Year: 2021, Rating: "8.0", Source: model.SourceBase},
	{ID: 2, Title: "Heat", Year: 1995, Rating: "8.3", Source: model.SourceBase},
	{ID: 7, Title: "Alien", Year: 1979, Rating: "8.5", Source: model.SourceBase},
}

var today = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testinfra.NewDB(t)
	kv, mr := testinfra.NewCache(t)
	log := zap.NewNop()

	f := &fixture{
		db:          db,
		kv:          kv,
		redis:       mr,
		enricher:    &fakeEnricher{records: map[string]*enrichment.Record{}},
		notifier:    &fakeNotifier{},
		movieRepo:   repository.NewMovieRepoGorm(db),
		listRepo:    repository.NewListRepoGorm(db),
		commentRepo: repository.NewCommentRepoGorm(db),
	}

	base := catalog.NewBaseCatalog(catalog.LoaderFunc(func(ctx context.Context) ([]model.Movie, error) {
		out := make([]model.Movie, len(testBase))
		copy(out, testBase)
		return out, nil
	}))

	f.auth = NewAuthService(repository.NewUserRepoGorm(db), kv, time.Hour, log)
	f.auth.cost = bcrypt.MinCost
	f.comments = NewCommentService(f.commentRepo, func() time.Time { return today })
	f.movies = NewMovieService(db, base, f.movieRepo, f.listRepo, f.commentRepo, f.comments, f.enricher, f.notifier, log)
	f.lists = NewListService(f.listRepo, f.movies)
	return f
}

func nopeForm() MovieForm {
	return MovieForm{
		Title:       "Nope",
		Year:        2022,
		DurationMin: 110,
		ReleaseDate: "2022-07-22",
		Rating:      6.5,
		Director:    "Jordan Peele",
	}
}

func (f *fixture) register(t *testing.T, email string) *Session {
	t.Helper()
	sess, err := f.auth.Register(context.Background(), email, "secret1")
	require.NoError(t, err)
	return sess
}
