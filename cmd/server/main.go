package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/api"
	"github.com/eldtechnologies/wiremail/internal/api/middleware"
	"github.com/eldtechnologies/wiremail/internal/config"
	"github.com/eldtechnologies/wiremail/internal/handlers"
	"github.com/eldtechnologies/wiremail/internal/relay"
	"github.com/eldtechnologies/wiremail/internal/store"
	"github.com/eldtechnologies/wiremail/internal/upload"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Initialize durable store: PostgreSQL when configured, SQLite otherwise
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite store")
	}
	defer db.Close()

	// Initialize Redis store (optional cache + rate limiting)
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Initialize attachment storage
	uploads, err := upload.NewStorage(cfg.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("upload directory setup failed")
	}

	// Relay core: registry, persistence worker, engine, websocket entry
	registry := relay.NewRegistry()
	worker := relay.NewWorker(db, redisStore, cfg.PersistWorkers, cfg.PersistTimeout, logger)
	defer worker.Shutdown()

	engine := relay.NewEngine(registry, worker, logger)
	wsHandler := relay.NewHandler(engine, cfg.AllowedOrigins, logger)

	// HTTP surface
	h := handlers.NewHandler(db, redisStore, uploads)

	var limiter *middleware.RateLimiter
	if redisStore != nil {
		limiter = middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
	}

	router := api.NewRouter(logger, h, wsHandler, limiter)

	// Create server. Relay connections are long-lived, so only the header
	// read is bounded; per-request deadlines would kill open WebSockets.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting WireMail server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
