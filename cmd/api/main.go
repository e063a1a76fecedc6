package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tomlord1122/tick/internal/cache"
	"github.com/Tomlord1122/tick/internal/config"
	"github.com/Tomlord1122/tick/internal/database"
	"github.com/Tomlord1122/tick/internal/logger"
	"github.com/Tomlord1122/tick/internal/repository"
	"github.com/Tomlord1122/tick/internal/server"
	"github.com/Tomlord1122/tick/internal/service"
)

func gracefulShutdown(apiServer *http.Server, closers []func() error, done chan bool) {
	log := logger.Named("shutdown")

	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("close resource")
		}
	}

	log.Info().Msg("server exiting")
	done <- true
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("load config")
	}
	logger.Init(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "tick-api",
		Writer:  os.Stdout,
	})
	log := logger.Named("main")

	// 1. Store
	dbService, err := database.New(cfg.DB, cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to store")
	}
	closers := []func() error{dbService.Close}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, dbService.GetDB()); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("ensure schema")
	}
	if cfg.DB.SeedExample {
		seeded, err := database.SeedExample(ctx, dbService.GetDB(), time.Now())
		if err != nil {
			cancel()
			log.Fatal().Err(err).Msg("seed example todo")
		}
		if seeded {
			log.Info().Msg("seeded example todo")
		}
	}
	cancel()

	// 2. Repository, optionally behind the cache
	todoRepo := repository.NewGormTodoRepository(dbService.GetDB())
	if cfg.Cache.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("connect to redis")
		}
		closers = append([]func() error{rdb.Close}, closers...)
		todoRepo = cache.NewTodoCache(todoRepo, rdb, cfg.Cache.TTL)
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("todo cache enabled")
	}

	// 3. Service
	todoService := service.NewTodoService(todoRepo)

	// 4. HTTP server
	apiServer := server.NewServer(cfg.HTTP, todoService, dbService)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, closers, done)

	log.Info().Str("addr", apiServer.Addr).Msg("starting server")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server ListenAndServe")
	}

	<-done
	log.Info().Msg("graceful shutdown complete")
}
