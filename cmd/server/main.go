package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/99minutos/accounts-api/docs" // swagger docs
	"github.com/99minutos/accounts-api/internal/api"
	"github.com/99minutos/accounts-api/internal/api/handler"
	"github.com/99minutos/accounts-api/internal/core/ports"
	"github.com/99minutos/accounts-api/internal/core/service"
	"github.com/99minutos/accounts-api/internal/infrastructure/auth"
	"github.com/99minutos/accounts-api/internal/infrastructure/config"
	"github.com/99minutos/accounts-api/internal/infrastructure/credential"
	"github.com/99minutos/accounts-api/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/accounts-api/internal/infrastructure/db/mongo"
	mysqldb "github.com/99minutos/accounts-api/internal/infrastructure/db/mysql"
	redisdb "github.com/99minutos/accounts-api/internal/infrastructure/db/redis"
	"github.com/99minutos/accounts-api/pkg/logger"
)

// @title Accounts API
// @version 1.0
// @description User account management with role-based access control.
// @host localhost:8080
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "accounts-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "accounts-api",
	})

	health := make(map[string]handler.Pinger)

	repo, closeStore, err := openStore(ctx, cfg, health)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Cache.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		cached := redisdb.NewCachedUserRepository(repo, rdb, cfg.Cache.TTL, log)
		health["redis"] = cached
		repo = cached
	}

	users := service.NewUserService(repo, credential.NewBcryptHasher(cfg.BcryptCost), log)

	e := api.NewRouter(api.Dependencies{
		Users:    users,
		Resolver: auth.NewJWTResolver(cfg.JWTSecret),
		Logger:   log,
		Health:   health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", ":"+cfg.Port).
			Str("store", cfg.StoreDriver).
			Bool("cache", cfg.Cache.Enabled).
			Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server start: %w", err)
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return shutdown(shutdownCtx, e.Shutdown, log)
}

// openStore connects the configured user store and registers it with the
// readiness probe. The returned func releases the connection.
func openStore(ctx context.Context, cfg *config.Config, health map[string]handler.Pinger) (ports.UserRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := mysqldb.Open(mysqldb.Config{
			DSN:             cfg.MySQL.DSN,
			MaxOpenConns:    25,
			ConnMaxLifetime: 5 * time.Minute,
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mysqldb.NewUserRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("auto-migrate: %w", err)
		}
		health["mysql"] = repo
		return repo, func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}, nil

	case config.StoreMemory:
		repo := memory.NewUserRepository()
		health["memory"] = repo
		return repo, func() {}, nil

	default:
		conn, err := mongodb.Dial(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "accounts-api",
		})
		if err != nil {
			return nil, nil, err
		}
		repo := mongodb.NewUserRepository(conn.DB)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = conn.Close(context.Background())
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		health["mongodb"] = repo
		return repo, func() { _ = conn.Close(context.Background()) }, nil
	}
}

func shutdown(ctx context.Context, stop func(context.Context) error, log zerolog.Logger) error {
	if err := stop(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
