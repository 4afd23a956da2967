package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/film-catalog/internal/app"
	"github.com/qs-lzh/film-catalog/internal/catalog"
	"github.com/qs-lzh/film-catalog/internal/service/domain"
	"github.com/qs-lzh/film-catalog/internal/validation"
)

type MovieHandler struct {
	app *app.App
}

func NewMovieHandler(app *app.App) *MovieHandler {
	return &MovieHandler{
		app: app,
	}
}

// HandleList serves the caller's merged catalog. Query: search, sort, dir.
func (h *MovieHandler) HandleList(ctx *gin.Context) {
	sortBy, ok := catalog.ParseSortKey(ctx.Query("sort"))
	if !ok {
		respondError(ctx, validation.New("sort", "Sort by title, rating, releasedate, duration or year."))
		return
	}

	movies, err := h.app.MovieService.Catalog(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}

	query := catalog.Query{
		Search: ctx.Query("search"),
		SortBy: sortBy,
		Desc:   strings.EqualFold(ctx.Query("dir"), "desc"),
	}
	ctx.JSON(200, gin.H{
		"movies": query.Apply(movies),
	})
}

func (h *MovieHandler) HandleGet(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	detail, err := h.app.MovieService.Detail(ctx.Request.Context(), currentUserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, detail)
}

func (h *MovieHandler) HandleCreate(ctx *gin.Context) {
	var form domain.MovieForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	movie, err := h.app.MovieService.AddMovie(ctx.Request.Context(), currentUserID(ctx), form)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(201, movie)
}

func (h *MovieHandler) HandleDelete(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	if err := h.app.MovieService.RemoveMovie(ctx.Request.Context(), currentUserID(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Movie removed",
	})
}

// HandleEnrichment looks a title up in OMDb. A missing match is a null record.
func (h *MovieHandler) HandleEnrichment(ctx *gin.Context) {
	title := strings.TrimSpace(ctx.Query("title"))
	if title == "" {
		respondError(ctx, validation.New("title", "Title is required."))
		return
	}

	year := 0
	if raw := strings.TrimSpace(ctx.Query("year")); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 0 {
			respondError(ctx, validation.New("year", "Enter a valid year."))
			return
		}
		year = y
	}

	ctx.JSON(200, gin.H{
		"record": h.app.Enrichment.Lookup(ctx.Request.Context(), title, year),
	})
}
