package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"skillup-go/internal/auth"
	"skillup-go/internal/cache"
	"skillup-go/internal/config"
	"skillup-go/internal/database"
	logger "skillup-go/internal/logging"
	"skillup-go/internal/mediator"
	"skillup-go/internal/repository"
	"skillup-go/internal/router"
	"skillup-go/internal/seed"
	"skillup-go/internal/services"
	"skillup-go/internal/storage"

	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger until the configuration is read
	log, err := logger.Init(".")
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	cfg, err := config.Init(".", log)
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if configured, err := logger.New(".", cfg.Logging); err != nil {
		log.Warn("Falling back to bootstrap logger", zap.Error(err))
	} else {
		_ = log.Sync()
		log = configured
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	store := repository.NewStore(db)

	if cfg.Database.SeedFile != "" {
		data, err := seed.Load(cfg.Database.SeedFile)
		if err != nil {
			log.Fatal("Failed to load seed data", zap.Error(err))
		}
		if err := seed.Apply(ctx, store, data, log); err != nil {
			log.Fatal("Failed to apply seed data", zap.Error(err))
		}
	}

	redisClient, err := cache.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("Continuing without assessment cache", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	files, err := storage.New(cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	tokens := auth.NewTokenService(cfg.Auth)

	worker := services.NewFeedbackWorker(log, store, services.RuleBasedFeedback{}, cfg.Feedback)
	worker.Start()

	m := mediator.New(log)
	services.Register(m, services.Deps{
		Log:      log,
		Store:    store,
		Tokens:   tokens,
		Auth:     cfg.Auth,
		Storage:  files,
		Files:    cfg.Storage,
		Cache:    cache.FromConfig(redisClient, cfg.Redis, log),
		Feedback: worker,
		Email:    services.NewEmailService(log, store),
		Live:     config.Get,
	})

	services.NewScheduler(log, store, time.Hour).Start(ctx)

	r := router.Setup(router.Deps{
		Log:      log,
		Server:   cfg.Server,
		Mediator: m,
		Tokens:   tokens,
		Feedback: worker,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Info("Server listening on http://localhost" + srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to run Gin server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := worker.Stop(shutdownCtx); err != nil {
		log.Warn("Feedback worker did not drain", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
