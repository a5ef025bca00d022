package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/handler"
	"github.com/weiawesome/wes-io-canvas/internal/hub"
	"github.com/weiawesome/wes-io-canvas/internal/relay"
	"github.com/weiawesome/wes-io-canvas/internal/service"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
	"github.com/weiawesome/wes-io-canvas/pkg/pubsub"
)

func main() {
	cfg, err := config.LoadServer(config.DefaultDir)
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log.Logger("canvas-server"))
	logger := log.L()

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}
	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Str(log.FieldInstanceID, cfg.InstanceID).Msg("starting canvas-server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := hub.NewRegistry()

	// Cross-instance relay is optional; without it rooms are process-local.
	var publisher service.RelayPublisher
	if cfg.Relay.Enabled() {
		ps, err := pubsub.NewPubSub(cfg.Relay.Config)
		if err != nil {
			logger.Fatal().Err(err).Str("driver", cfg.Relay.Driver).Msg("failed to initialize relay pubsub")
		}
		r := relay.New(ps, cfg.InstanceID)
		defer r.Close()
		publisher = r

		go func() {
			if err := r.Run(ctx, registry); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("relay stopped")
			}
		}()
		logger.Info().Str("driver", cfg.Relay.Driver).Msg("cross-instance relay enabled")
	}

	canvasSvc := service.NewCanvasService(registry, publisher, cfg.WebSocket.MaxUnjoinedStrikes)
	wsHandler := handler.NewWSHandler(registry, canvasSvc, cfg.WebSocket)

	router := mux.NewRouter()
	wsHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     log.HTTPMiddleware(logger)(router),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("canvas-server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down canvas-server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("canvas-server stopped")
}
