package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-canvas/internal/cache"
	"github.com/weiawesome/wes-io-canvas/internal/config"
	"github.com/weiawesome/wes-io-canvas/internal/handler"
	"github.com/weiawesome/wes-io-canvas/internal/repository"
	"github.com/weiawesome/wes-io-canvas/internal/service"
	"github.com/weiawesome/wes-io-canvas/pkg/database"
	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

func main() {
	cfg, err := config.LoadGateway(config.DefaultDir)
	if err != nil {
		l := log.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Init(cfg.Log.Logger("canvas-gateway"))
	logger := log.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Str("db_driver", cfg.Database.Driver).Msg("starting canvas-gateway")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, repository.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Msg("database ready")

	var elementCache cache.ElementCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisElementCache(cfg.Cache, cache.DefaultPrefix)
		if err != nil {
			logger.Warn().Err(err).Msg("element cache unavailable, serving from database only")
		} else {
			defer redisCache.Close()
			elementCache = redisCache
			logger.Info().Str("address", cfg.Cache.Address).Dur("ttl", cfg.Cache.TTL).Msg("element cache enabled")
		}
	}

	boardSvc := service.NewBoardService(
		repository.NewGormBoardRepository(db),
		repository.NewGormElementRepository(db),
		elementCache,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(log.GinMiddleware(logger))
	handler.NewHTTPHandler(boardSvc).RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("canvas-gateway listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down canvas-gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info().Msg("canvas-gateway stopped")
}
