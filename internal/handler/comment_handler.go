package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/film-catalog/internal/app"
)

type CommentHandler struct {
	app *app.App
}

func NewCommentHandler(app *app.App) *CommentHandler {
	return &CommentHandler{
		app: app,
	}
}

type CommentRequest struct {
	Text string `json:"text"`
}

func (h *CommentHandler) HandleList(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	movie, err := h.app.MovieService.Movie(ctx.Request.Context(), currentUserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	comments, err := h.app.CommentService.List(ctx.Request.Context(), *movie)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(200, gin.H{
		"comments": comments,
	})
}

// HandleCreate posts a comment signed with the caller's email.
func (h *CommentHandler) HandleCreate(ctx *gin.Context) {
	id, ok := movieID(ctx)
	if !ok {
		return
	}

	var req CommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	user := currentUser(ctx)
	movie, err := h.app.MovieService.Movie(ctx.Request.Context(), user.ID, id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	comment, err := h.app.CommentService.Add(ctx.Request.Context(), *movie, user.Email, req.Text)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(201, comment)
}
