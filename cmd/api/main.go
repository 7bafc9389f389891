// Command api serves the acquisitions user-account API.
//
//	@title						Acquisitions API
//	@version					1.0
//	@description				User accounts with token authentication and role-based access.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/omar-arnous/acquisitions/docs"
	"github.com/omar-arnous/acquisitions/internal/api"
	"github.com/omar-arnous/acquisitions/internal/api/handler"
	"github.com/omar-arnous/acquisitions/internal/core/ports"
	"github.com/omar-arnous/acquisitions/internal/core/security"
	"github.com/omar-arnous/acquisitions/internal/core/service"
	mongostore "github.com/omar-arnous/acquisitions/internal/infrastructure/db/mongo"
	pgstore "github.com/omar-arnous/acquisitions/internal/infrastructure/db/postgres"
	redisstore "github.com/omar-arnous/acquisitions/internal/infrastructure/db/redis"
	"github.com/omar-arnous/acquisitions/internal/infrastructure/queue"
	"github.com/omar-arnous/acquisitions/internal/pkg/config"
	"github.com/omar-arnous/acquisitions/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.ForEnv(cfg.Env, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// The pool outlives ctx so requests draining during shutdown can still hash.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := queue.NewPool(cfg.Auth.HashWorkers, log)
	pool.Start(poolCtx)
	log.Info().Int("workers", pool.Size()).Msg("hash pool started")

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost, pool)
	tokens := security.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, security.WithIssuer(cfg.Auth.Issuer))
	throttle := redisstore.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)
	accounts := service.NewAccountService(repo, hasher, tokens, throttle, log)

	e := api.NewRouter(api.RouteConfig{
		Accounts: accounts,
		Tokens:   tokens,
		Cookie: handler.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: !cfg.IsDevelopment(),
			TTL:    cfg.Auth.TokenTTL,
		},
		Health: []handler.Dependency{
			{Name: cfg.Storage.Driver, Ping: repo.Ping},
			{Name: "redis", Ping: redisstore.Ping(rdb)},
		},
		Log: log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("storage", cfg.Storage.Driver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore connects the configured user store and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.UserRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pgPool, err := pgstore.Connect(ctx, pgstore.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, nil, err
		}
		if err := pgstore.EnsureSchema(ctx, pgPool, log); err != nil {
			pgPool.Close()
			return nil, nil, err
		}
		log.Info().Msg("connected to postgres")
		return pgstore.NewUserRepository(pgPool), pgPool.Close, nil

	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return repo, closeFn, nil
	}
}
