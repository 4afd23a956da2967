package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/qs-lzh/film-catalog/internal/model"
	"github.com/qs-lzh/film-catalog/internal/service"
	"github.com/qs-lzh/film-catalog/internal/service/domain"
)

const SessionCookie = "ft_session"

const (
	ctxTokenKey = "sessionToken"
	ctxUserKey  = "currentUser"
)

// sessionToken reads the cookie first, then an Authorization bearer token.
func sessionToken(ctx *gin.Context) string {
	if token, err := ctx.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}
	if auth := ctx.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// Session resolves the caller. Requests without a valid session continue as
// anonymous.
func Session(auth domain.AuthService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := sessionToken(ctx)
		ctx.Set(ctxTokenKey, token)

		user, err := auth.CurrentUser(ctx.Request.Context(), token)
		if err != nil {
			_ = ctx.Error(err)
		} else if user != nil {
			ctx.Set(ctxUserKey, user)
		}
		ctx.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if currentUser(ctx) == nil {
			respondError(ctx, service.ErrAuthRequired)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func currentUser(ctx *gin.Context) *model.SessionUser {
	v, ok := ctx.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.SessionUser)
	return user
}

// currentUserID is "" for anonymous callers.
func currentUserID(ctx *gin.Context) string {
	if user := currentUser(ctx); user != nil {
		return user.ID
	}
	return ""
}

func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !limiter.Allow() {
			ctx.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
