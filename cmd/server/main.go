package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratethem-backend/internal/config"
	"ratethem-backend/internal/database"
	"ratethem-backend/internal/logging"
	"ratethem-backend/internal/repository"
	"ratethem-backend/internal/router"
	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logging.SetDefault(cfg.App.Name, cfg.App.Version, cfg.App.LogFormat, cfg.App.LogLevel)
	slog.Info("configuration loaded", "env", cfg.App.Env, "db_driver", cfg.Database.Driver)

	// 2. Initialize token and password utilities
	utils.InitJWT(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	utils.SetBcryptCost(cfg.JWT.BcryptCost)

	// 3. Initialize database connection
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.Database.Seed {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// 4. Optional Redis for rate limiting
	rdb := connectRedis(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	// 5. Start background token cleanup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := service.NewWorkerService(repository.NewRefreshTokenRepo(db), cfg.JWT.CleanupInterval)
	go worker.Start(ctx)

	// 6. Setup Gin
	gin.SetMode(cfg.Server.GinMode)
	engine := router.New(cfg, db, rdb, prometheus.NewRegistry())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 7. Serve until interrupted
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	}

	// Stop the cleanup worker before draining requests
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server exited")
	return nil
}

// connectRedis returns nil when Redis is not configured or unreachable
func connectRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, rate limiting disabled", "addr", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	slog.Info("redis connected", "addr", cfg.Addr)
	return rdb
}
