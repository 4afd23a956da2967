package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/qs-lzh/film-catalog/internal/app"
)

type EventsHandler struct {
	app      *app.App
	upgrader websocket.Upgrader
}

func NewEventsHandler(app *app.App) *EventsHandler {
	origins := app.Config.CORSOrigins
	return &EventsHandler{
		app: app,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, origin) || origin == "http://"+r.Host || origin == "https://"+r.Host
			},
		},
	}
}

// HandleWS streams CATALOG_CHANGED events for the caller until the socket closes.
func (h *EventsHandler) HandleWS(ctx *gin.Context) {
	user := currentUser(ctx)

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.app.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.app.Hub.Serve(conn, user.ID)
}
