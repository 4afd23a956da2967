package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/qs-lzh/film-catalog/config"
	"github.com/qs-lzh/film-catalog/internal/app"
	"github.com/qs-lzh/film-catalog/internal/cache"
	"github.com/qs-lzh/film-catalog/internal/handler"
	"github.com/qs-lzh/film-catalog/internal/logger"
	"github.com/qs-lzh/film-catalog/internal/mq"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	redisCache, err := cache.NewRedisCache(cfg.CacheURL, log.Named("cache"))
	if err != nil {
		log.Fatal("failed to create cache", zap.Error(err))
	}
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Fatal("failed to reach redis", zap.String("addr", cfg.CacheURL), zap.Error(err))
	}

	var mqConn *amqp.Connection
	if cfg.MQURL != "" {
		mqConn, err = mq.NewMQConn(cfg.MQURL)
		if err != nil {
			log.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
	}

	application := app.New(cfg, db, redisCache, mqConn, log)
	defer application.Close()

	if err := application.Init(); err != nil {
		log.Fatal("failed to init app", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler.NewRouter(application),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}
