// @title                       Users Management API
// @version                     1.0
// @description                 JWT authentication and role-based user directory.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jinlabs/users-management/internal/api"
	"github.com/jinlabs/users-management/internal/api/handler"
	"github.com/jinlabs/users-management/internal/api/middleware"
	"github.com/jinlabs/users-management/internal/core/ports"
	"github.com/jinlabs/users-management/internal/core/service"
	"github.com/jinlabs/users-management/internal/infrastructure/db/gormdb"
	mongodb "github.com/jinlabs/users-management/internal/infrastructure/db/mongo"
	redisdb "github.com/jinlabs/users-management/internal/infrastructure/db/redis"
	"github.com/jinlabs/users-management/internal/infrastructure/messaging/kafka"
	"github.com/jinlabs/users-management/internal/infrastructure/queue"
	"github.com/jinlabs/users-management/internal/infrastructure/security"
	"github.com/jinlabs/users-management/internal/pkg/config"
	"github.com/jinlabs/users-management/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "users-management: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.ServiceName,
	})

	key, err := security.DecodeSecretKey(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("jwt secret: %w", err)
	}
	codec, err := security.NewJWTCodec(key)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	health := make(map[string]handler.Pinger)
	var closers []io.Closer

	repo, err := openStore(ctx, cfg, health, &closers)
	if err != nil {
		return err
	}
	defer func() { closeAll(log, closers) }()

	var limiter middleware.Limiter
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		closers = append(closers, rdb)
		health["redis"] = redisdb.Pinger{Client: rdb}
		limiter = redisdb.NewFixedWindowLimiter(rdb, cfg.Redis.RateLimitPerMin, 0)
		log.Info().Str("addr", cfg.Redis.Addr).Int("per_minute", cfg.Redis.RateLimitPerMin).Msg("auth rate limiting enabled")
	}

	var sink ports.EventSink = kafka.LogSink{Log: logger.Component("events")}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, producer)
		sink = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("event publishing enabled")
	}
	dispatcher := queue.NewDispatcher(cfg.Kafka.Workers, sink, logger.Component("dispatcher"))
	dispatcher.Start(context.Background())

	resolver := service.NewIdentityResolver(repo)
	authService := service.NewAuthService(service.AuthDependencies{
		Users:    repo,
		Resolver: resolver,
		Hasher:   hasher,
		Tokens:   codec,
		Events:   dispatcher,
		Logger:   log,
	})
	userService := service.NewUserService(repo, hasher, dispatcher, log)

	proxies, err := cfg.TrustedProxyRanges()
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Auth:     authService,
		Users:    userService,
		Tokens:   codec,
		Resolver: resolver,
		Limiter:  limiter,
		Health:   health,
		Logger:   logger.Component("http"),

		TrustedProxies: proxies,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("event queue not drained before shutdown deadline")
	}
	return nil
}

// openStore connects the configured user store and registers its readiness
// check and closer.
func openStore(ctx context.Context, cfg *config.Config, health map[string]handler.Pinger, closers *[]io.Closer) (ports.UserRepository, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, closerFunc(func() error { return client.Disconnect(context.Background()) }))
		health["store"] = mongodb.Pinger{Client: client}

		repo := mongodb.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return repo, nil

	default:
		db, err := gormdb.Open(ctx, gormdb.Config{
			Driver:      cfg.Store.Driver,
			DSN:         cfg.StoreDSN(),
			AutoMigrate: cfg.Store.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, gormCloser{db})
		health["store"] = gormdb.Pinger{DB: db}
		return gormdb.NewUserRepository(db), nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

type gormCloser struct{ db *gorm.DB }

func (g gormCloser) Close() error { return gormdb.Close(g.db) }

// closeAll releases resources in reverse order of acquisition.
func closeAll(log zerolog.Logger, closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("close")
		}
	}
}
