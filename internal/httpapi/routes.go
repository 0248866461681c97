package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kevykibbz/realtime-web-controller/internal/broadcast"
	"github.com/kevykibbz/realtime-web-controller/internal/config"
	"github.com/kevykibbz/realtime-web-controller/internal/session"
	"github.com/kevykibbz/realtime-web-controller/internal/ws"
)

func SetupRoutes(router *session.Router, hub *broadcast.Hub, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Get("/", Status)
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(router, hub, cfg, logger))
	return r
}
