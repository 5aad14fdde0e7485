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

	"github.com/returnloop/pickup-system/internal/api"
	"github.com/returnloop/pickup-system/internal/core/service"
	"github.com/returnloop/pickup-system/internal/infrastructure/config"
	mongodb "github.com/returnloop/pickup-system/internal/infrastructure/db/mongo"
	redisdb "github.com/returnloop/pickup-system/internal/infrastructure/db/redis"
	"github.com/returnloop/pickup-system/internal/infrastructure/queue"
	"github.com/returnloop/pickup-system/pkg/logger"
)

// @title        Returns Pickup API
// @version      1.0
// @description  Doorstep pickup scheduling for retail returns: customers
// @description  schedule pickups, drivers claim and fulfil them, admins
// @description  monitor the pipeline.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Repositories ---
	pickupRepo := mongodb.NewPickupRepository(db)
	custodyRepo := mongodb.NewCustodyRepository(db)
	authRepo := mongodb.NewAuthRepository(db)

	if err := pickupRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure pickup indexes")
	}

	// --- Services ---
	recorder := queue.NewRecorder(cfg.CustodyWorkers, custodyRepo, log)
	recorder.Start(ctx)

	dedup := redisdb.NewDedupStore(rdb)
	pickupService := service.NewPickupService(pickupRepo, custodyRepo, recorder, dedup, log)
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, 24*time.Hour)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, pickupService, authService, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("returns pickup api started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
