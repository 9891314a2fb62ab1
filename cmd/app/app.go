package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vuctf/vuctf-api/internal/api"
	"github.com/vuctf/vuctf-api/internal/cache"
	"github.com/vuctf/vuctf-api/internal/config"
	"github.com/vuctf/vuctf-api/internal/db"
	"github.com/vuctf/vuctf-api/internal/logger"
	"github.com/vuctf/vuctf-api/internal/service"
)

const (
	configPath      = "./cmd/app/config.yml"
	shutdownTimeout = 10 * time.Second
)

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer func() { _ = zap.L().Sync() }()

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	redisURL := os.Getenv("REDIS_URL")
	var redisClient *redis.Client
	if redisURL != "" {
		redisClient, err = cache.OpenRedisWithURL(redisURL)
	} else {
		redisClient, err = cache.OpenRedis(conf.Redis)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize redis -> %w", err)
	}
	defer redisClient.Close()

	s := api.NewServer(conf, postgresDB, redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if conf.Catalog.SeedOnStart {
		if err = s.Catalog.EnsureSeeded(ctx); err != nil {
			return fmt.Errorf("failed to seed challenges -> %w", err)
		}
	}

	go s.Feed.Run(ctx)

	err = config.Watch(configPath, func(c *config.AppConfig) {
		s.Wallet.SetLimits(service.WalletLimits{
			MinWithdrawal:  c.Wallet.MinWithdrawal,
			ConversionRate: c.Wallet.ConversionRate,
		})
		zap.L().Info("reloaded wallet limits",
			zap.Int("min_withdrawal", c.Wallet.MinWithdrawal),
			zap.Int("conversion_rate", c.Wallet.ConversionRate),
		)
	}, func(err error) {
		zap.L().Warn("ignored invalid config change", zap.Error(err))
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	addr := ":" + s.Config.API.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}
