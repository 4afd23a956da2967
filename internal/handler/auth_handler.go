package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qs-lzh/film-catalog/internal/app"
	"github.com/qs-lzh/film-catalog/internal/service/domain"
)

type AuthHandler struct {
	app *app.App
}

func NewAuthHandler(app *app.App) *AuthHandler {
	return &AuthHandler{
		app: app,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) HandleRegister(ctx *gin.Context) {
	var req CredentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	sess, err := h.app.AuthService.Register(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, sess)
	ctx.JSON(201, sess)
}

func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	var req CredentialsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBadRequest(ctx, err)
		return
	}

	sess, err := h.app.AuthService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}

	h.setSessionCookie(ctx, sess)
	ctx.JSON(200, sess)
}

func (h *AuthHandler) HandleLogout(ctx *gin.Context) {
	if err := h.app.AuthService.Logout(ctx.Request.Context(), ctx.GetString(ctxTokenKey)); err != nil {
		respondError(ctx, err)
		return
	}

	h.clearSessionCookie(ctx)
	ctx.JSON(200, gin.H{
		"message": "Signed out",
	})
}

// HandleMe reports the signed-in user, or null.
func (h *AuthHandler) HandleMe(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"user": currentUser(ctx),
	})
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, sess *domain.Session) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, sess.Token, int(h.app.Config.SessionTTL.Seconds()), "/", "", h.secure(), true)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, "", -1, "/", "", h.secure(), true)
}

func (h *AuthHandler) secure() bool {
	return h.app.Config.Env == "production"
}
