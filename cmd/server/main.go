package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/kevykibbz/realtime-web-controller/internal/broadcast"
	"github.com/kevykibbz/realtime-web-controller/internal/config"
	"github.com/kevykibbz/realtime-web-controller/internal/httpapi"
	"github.com/kevykibbz/realtime-web-controller/internal/session"
	"github.com/kevykibbz/realtime-web-controller/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	st := store.New()
	hub := broadcast.NewHub(logger)
	router := session.NewRouter(context.Background(), st, hub, logger)

	handler := httpapi.SetupRoutes(router, hub, cfg, logger)

	addr := ":" + cfg.Port
	logger.Info("server started",
		zap.String("addr", addr),
		zap.Duration("ping_interval", cfg.PingInterval),
		zap.Duration("ping_timeout", cfg.PingTimeout))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
