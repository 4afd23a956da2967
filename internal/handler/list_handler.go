package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/film-catalog/internal/app"
	"github.com/qs-lzh/film-catalog/internal/model"
)

type ListHandler struct {
	app *app.App
}

func NewListHandler(app *app.App) *ListHandler {
	return &ListHandler{
		app: app,
	}
}

func listKind(ctx *gin.Context) model.ListKind {
	return model.ListKind(ctx.Param("kind"))
}

func (h *ListHandler) HandleMovies(ctx *gin.Context) {
	movies, err := h.app.ListService.Movies(ctx.Request.Context(), currentUserID(ctx), listKind(ctx), ctx.Query("search"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"movies": movies,
	})
}

func (h *ListHandler) HandleClear(ctx *gin.Context) {
	if err := h.app.ListService.Clear(ctx.Request.Context(), currentUserID(ctx), listKind(ctx)); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "List cleared",
	})
}

func (h *ListHandler) HandleAdd(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	added, err := h.app.ListService.Add(ctx.Request.Context(), currentUserID(ctx), listKind(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !added {
		ctx.JSON(200, gin.H{
			"added":   false,
			"message": "Already in " + string(listKind(ctx)),
		})
		return
	}
	ctx.JSON(201, gin.H{
		"added":   true,
		"message": "Added to " + string(listKind(ctx)),
	})
}

func (h *ListHandler) HandleRemove(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	if err := h.app.ListService.Remove(ctx.Request.Context(), currentUserID(ctx), listKind(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"message": "Removed from " + string(listKind(ctx)),
	})
}

func (h *ListHandler) HandleContains(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	contains, err := h.app.ListService.Contains(ctx.Request.Context(), currentUserID(ctx), listKind(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"contains": contains,
	})
}
