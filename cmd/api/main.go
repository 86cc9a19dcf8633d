package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskdeck/taskdeck-api/internal/api"
	"github.com/taskdeck/taskdeck-api/internal/infrastructure/backend"
	"github.com/taskdeck/taskdeck-api/internal/infrastructure/config"
	mongostore "github.com/taskdeck/taskdeck-api/internal/infrastructure/db/mongo"
	redisstore "github.com/taskdeck/taskdeck-api/internal/infrastructure/db/redis"
	"github.com/taskdeck/taskdeck-api/internal/infrastructure/queue"
	"github.com/taskdeck/taskdeck-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("configuration invalid, refusing to start")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	backendClient := backend.NewClient(backend.Config{
		URL:        cfg.Backend.URL,
		ServiceKey: cfg.Backend.ServiceKey,
		Timeout:    cfg.Backend.Timeout,
	}, log)

	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	auditRepo := mongostore.NewAuditRepository(db)
	auditPipeline := queue.NewAuditPipeline(0, auditRepo, log)
	auditPipeline.Start(ctx)

	e := api.NewRouter(backendClient, db, rdb, auditPipeline, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
