package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/config"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/logging"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/repository/postgres"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/repository/redis"
	"github.com/iamasit07/fazenda-financeiro/backend/internal/service/session"
	transportHttp "github.com/iamasit07/fazenda-financeiro/backend/internal/transport/http"
	"github.com/iamasit07/fazenda-financeiro/backend/pkg/auth"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Info().Msg("no .env file found, using environment variables")
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := logging.Setup(cfg.LogLevel, !cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// 1. Database
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxOpenConns:       cfg.DBMaxOpenConns,
		MaxIdleConns:       cfg.DBMaxIdleConns,
		ConnMaxLifetimeMin: cfg.DBConnMaxLifetimeMin,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("database unreachable")
	}
	defer db.Close()

	logger.Info().Msg("running database migrations")
	if err := postgres.RunMigrations(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	userRepo := postgres.NewUserRepo(db)

	// 2. Optional session cache
	var cache session.CacheRepository
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, redis.Options{Addr: cfg.RedisURL, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running without session cache")
		} else {
			defer client.Close()
			cache = redis.NewRedisCache(client)
			logger.Info().Str("addr", cfg.RedisURL).Msg("session cache enabled")
		}
	}

	// 3. Services and transport
	authService := session.NewAuthService(userRepo, auth.NewIssuer(cfg.JWTSecret), cache, cfg.SessionCacheTTL)
	authHandler := transportHttp.NewAuthHandler(authService)
	router := transportHttp.NewRouter(logger, authHandler, authService)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited gracefully")
}
