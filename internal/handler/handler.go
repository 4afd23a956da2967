package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

// respondError maps service errors onto HTTP responses.
func respondError(ctx *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		ctx.JSON(400, gin.H{
			"error":   "Validation failed",
			"field":   verr.Field,
			"message": verr.Message,
		})
	case errors.Is(err, service.ErrAuthRequired):
		ctx.JSON(401, gin.H{
			"error":   "Authentication required",
			"message": "Please sign in to continue",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		ctx.JSON(401, gin.H{
			"error":   "Invalid credentials",
			"message": "Invalid email or password",
		})
	case errors.Is(err, service.ErrDuplicateEmail):
		ctx.JSON(409, gin.H{
			"error":   "Duplicate email",
			"message": "An account with this email already exists",
		})
	case errors.Is(err, service.ErrDuplicateMovie):
		ctx.JSON(409, gin.H{
			"error":   "Duplicate movie",
			"message": "A movie with this title already exists",
		})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(404, gin.H{
			"error":   "Not found",
			"message": "Movie not found",
		})
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		_ = ctx.Error(err)
		ctx.JSON(503, gin.H{
			"error":   "Catalog unavailable",
			"message": "The movie catalog could not be loaded, please try again later",
		})
	default:
		_ = ctx.Error(err)
		ctx.JSON(500, gin.H{
			"error":   "Internal server error",
			"message": "Something went wrong, please try again later",
		})
	}
}

func respondBadRequest(ctx *gin.Context, err error) {
	ctx.JSON(400, gin.H{
		"error":  "Invalid request format",
		"detail": err.Error(),
	})
}

// movieID reads the :id path parameter. An unparsable id cannot name a movie.
func movieID(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		respondError(ctx, service.ErrNotFound)
		return 0, false
	}
	return id, true
}
