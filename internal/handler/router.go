package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/qs-lzh/film-catalog/internal/app"
	"github.com/qs-lzh/film-catalog/internal/logger"
)

func NewRouter(app *app.App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(app.Logger))

	if len(app.Config.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     app.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(Session(app.AuthService))

	authHandler := NewAuthHandler(app)
	movieHandler := NewMovieHandler(app)
	listHandler := NewListHandler(app)
	commentHandler := NewCommentHandler(app)
	eventsHandler := NewEventsHandler(app)

	limiter := rate.NewLimiter(rate.Limit(app.Config.AuthRateLimit), app.Config.AuthRateBurst)
	auth := router.Group("/auth")
	{
		auth.POST("/register", RateLimit(limiter), authHandler.HandleRegister)
		auth.POST("/login", RateLimit(limiter), authHandler.HandleLogin)
		auth.POST("/logout", authHandler.HandleLogout)
		auth.GET("/me", authHandler.HandleMe)
	}

	movies := router.Group("/movies")
	{
		movies.GET("", movieHandler.HandleList)
		movies.GET("/:id", movieHandler.HandleGet)
		movies.POST("", RequireAuth(), movieHandler.HandleCreate)
		movies.DELETE("/:id", RequireAuth(), movieHandler.HandleDelete)

		movies.GET("/:id/comments", commentHandler.HandleList)
		movies.POST("/:id/comments", RequireAuth(), commentHandler.HandleCreate)
	}

	lists := router.Group("/lists/:kind", RequireAuth())
	{
		lists.GET("", listHandler.HandleMovies)
		lists.DELETE("", listHandler.HandleClear)
		lists.GET("/:id", listHandler.HandleContains)
		lists.POST("/:id", listHandler.HandleAdd)
		lists.DELETE("/:id", listHandler.HandleRemove)
	}

	router.GET("/enrichment", movieHandler.HandleEnrichment)
	router.GET("/ws", RequireAuth(), eventsHandler.HandleWS)
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
