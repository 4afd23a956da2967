package app

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/film-catalog/config"
	"github.com/qs-lzh/film-catalog/internal/cache"
	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/enrichment"
	"github.com/qs-lzh/film-catalog/internal/hub"
	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/mq"
	"github.com/qs-lzh/film-catalog/internal/repository"
	"github.com/qs-lzh/film-catalog/internal/service/domain"
	"github.com/qs-lzh/film-catalog/internal/service/workflow"
)

type App struct {
	Config *config.Config

	DB     *gorm.DB
	Cache  *cache.RedisCache
	Logger *zap.Logger
	MQConn *amqp.Connection

	BaseCatalog *catalog.BaseCatalog
	Enrichment  *enrichment.Client
	Hub         *hub.Hub
	Publisher   *mq.CatalogPublisher

	UserRepo    repository.UserRepo
	MovieRepo   repository.MovieRepo
	ListRepo    repository.ListRepo
	CommentRepo repository.CommentRepo

	AuthService    domain.AuthService
	MovieService   domain.MovieService
	ListService    domain.ListService
	CommentService domain.CommentService

	CatalogWorkflow *workflow.CatalogWorkflow
}

// New wires the application. mqConn may be nil, in which case catalog changes
// only reach the websockets held by this instance.
func New(config *config.Config, db *gorm.DB, cache *cache.RedisCache, mqConn *amqp.Connection, log *zap.Logger) *App {
	userRepo := repository.NewUserRepoGorm(db)
	movieRepo := repository.NewMovieRepoGorm(db)
	listRepo := repository.NewListRepoGorm(db)
	commentRepo := repository.NewCommentRepoGorm(db)

	baseCatalog := catalog.NewBaseCatalog(catalog.FileLoader(config.BaseCatalogPath))
	enrichmentClient := enrichment.NewClient(enrichment.Options{
		BaseURL:  config.OMDbURL,
		APIKey:   config.OMDbAPIKey,
		Timeout:  config.OMDbTimeout,
		CacheTTL: config.OMDbTTL,
	}, cache, log.Named("omdb"))
	wsHub := hub.New(log.Named("hub"))

	var publisher *mq.CatalogPublisher
	var notifier domain.CatalogNotifier = hubNotifier{hub: wsHub}
	if mqConn != nil {
		publisher = mq.NewCatalogPublisher(mqConn)
		notifier = publisher
	}

	authService := domain.NewAuthService(userRepo, cache, config.SessionTTL, log.Named("auth"))
	commentService := domain.NewCommentService(commentRepo, time.Now)
	movieService := domain.NewMovieService(db, baseCatalog, movieRepo, listRepo, commentRepo,
		commentService, enrichmentClient, notifier, log.Named("movies"))
	listService := domain.NewListService(listRepo, movieService)

	catalogWorkflow := workflow.NewCatalogWorkflow(wsHub, log.Named("workflow"))

	return &App{
		Config:          config,
		DB:              db,
		Cache:           cache,
		Logger:          log,
		MQConn:          mqConn,
		BaseCatalog:     baseCatalog,
		Enrichment:      enrichmentClient,
		Hub:             wsHub,
		Publisher:       publisher,
		UserRepo:        userRepo,
		MovieRepo:       movieRepo,
		ListRepo:        listRepo,
		CommentRepo:     commentRepo,
		AuthService:     authService,
		MovieService:    movieService,
		ListService:     listService,
		CommentService:  commentService,
		CatalogWorkflow: catalogWorkflow,
	}
}

func (app *App) Init() error {
	if err := app.DB.AutoMigrate(model.Tables()...); err != nil {
		return err
	}

	if movies, err := app.BaseCatalog.Load(context.Background()); err != nil {
		app.Logger.Warn("base catalog not loaded", zap.Error(err))
	} else {
		app.Logger.Info("base catalog loaded", zap.Int("movies", len(movies)))
	}

	if app.MQConn == nil {
		app.Logger.Warn("no message broker, catalog changes reach local sockets only")
		return nil
	}
	if err := mq.InitExchanges(app.MQConn); err != nil {
		return err
	}
	return app.CatalogWorkflow.Start(app.MQConn)
}

func (app *App) Close() error {
	var errs []error
	if app.Publisher != nil {
		errs = append(errs, app.Publisher.Close())
	}
	if app.MQConn != nil {
		errs = append(errs, app.MQConn.Close())
	}
	errs = append(errs, app.Cache.Close())

	sqlDB, err := app.DB.DB()
	if err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, sqlDB.Close())
	}
	return errors.Join(errs...)
}

// hubNotifier delivers catalog changes straight to the local hub when there is
// no broker to fan them out.
type hubNotifier struct {
	hub *hub.Hub
}

func (n hubNotifier) CatalogChanged(ctx context.Context, userID string) error {
	n.hub.CatalogChanged(userID)
	return nil
}
