// Package main - точка входа HTTP API MindGym Hub.
//
// API принимает результаты игровых сессий и отдаёт то, что из них
// выводится: личную статистику, глобальный лидерборд и место игрока.
// Все агрегаты пересчитываются из сессий на каждый запрос.
//
// Хранилище выбирается конфигурацией: PostgreSQL при заданном DATABASE_URL,
// иначе in-memory (режим разработки). Redis опционален и кеширует только
// имена пользователей для лидерборда.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindgym/mindgym-hub/config"
	"github.com/mindgym/mindgym-hub/internal/application/command"
	"github.com/mindgym/mindgym-hub/internal/application/query"
	"github.com/mindgym/mindgym-hub/internal/domain/session"
	"github.com/mindgym/mindgym-hub/internal/domain/user"
	"github.com/mindgym/mindgym-hub/internal/infrastructure/persistence/memory"
	"github.com/mindgym/mindgym-hub/internal/infrastructure/persistence/postgres"
	"github.com/mindgym/mindgym-hub/internal/infrastructure/persistence/redis"
	httpapi "github.com/mindgym/mindgym-hub/internal/interface/http"
	"github.com/mindgym/mindgym-hub/pkg/logger"
	"github.com/mindgym/mindgym-hub/pkg/retry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// storage - выбранные реализации портов и функция освобождения ресурсов.
type storage struct {
	sessions   session.Store
	users      user.Repository
	identities user.IdentityLookup
	health     *httpapi.HealthChecker
	close      func()
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	}).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)

	log.Info("starting MindGym Hub API",
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ (PostgreSQL или in-memory) + КЕШ ИМЁН (Redis)
	// ─────────────────────────────────────────────────────────────────────────
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ОБРАБОТЧИКИ КОМАНД И ЗАПРОСОВ
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpapi.Dependencies{
		RegisterUserHandler:   command.NewRegisterUserHandler(store.users, cfg.App.PasswordHashCost),
		RecordSessionHandler:  command.NewRecordSessionHandler(store.sessions, store.identities),
		GetUserHandler:        query.NewGetUserHandler(store.users),
		ListSessionsHandler:   query.NewListSessionsHandler(store.sessions),
		GetUserStatsHandler:   query.NewGetUserStatsHandler(store.sessions),
		GetLeaderboardHandler: query.NewGetLeaderboardHandler(store.sessions, store.identities),
		GetUserRankHandler:    query.NewGetUserRankHandler(store.sessions),
		Logger:                log,
		HealthChecker:         store.health,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	server := httpapi.NewServer(httpConfig(cfg), deps)
	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// openStorage подключает PostgreSQL (с повторами и миграциями) или
// возвращает in-memory хранилище, если DATABASE_URL не задан.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	health := httpapi.NewHealthChecker(cfg.App.Version)
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	st := &storage{health: health, close: closeAll}

	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL is not set, using in-memory storage")
		users := memory.NewUserRepository()
		st.sessions = memory.NewSessionStore()
		st.users = users
		st.identities = users
	} else {
		conn, err := connectPostgres(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		closers = append(closers, conn.Close)

		if cfg.Database.AutoMigrate {
			n, err := postgres.NewMigrator(conn).Migrate(ctx)
			if err != nil {
				closeAll()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("database schema is up to date", logger.Int("applied", n))
		}

		users := postgres.NewUserRepository(conn)
		st.sessions = postgres.NewSessionRepository(conn)
		st.users = users
		st.identities = users
		health.AddCheck("database", httpapi.PingCheck(conn))
	}

	if cfg.Redis.URL != "" {
		cache, err := redis.NewCache(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			// Кеш не обязателен: без него имена читаются из базы.
			log.Warn("failed to connect to Redis, username cache disabled", logger.Err(err))
		} else {
			closers = append(closers, func() { _ = cache.Close() })
			st.identities = redis.NewCachedIdentityLookup(cache, st.identities, cfg.Redis.UsernameTTL, log)
			health.AddCheck("cache", httpapi.PingCheck(cache))
			log.Info("Redis username cache enabled", logger.Duration("ttl", cfg.Redis.UsernameTTL))
		}
	}

	return st, nil
}

// connectPostgres открывает пул, повторяя попытки, пока база поднимается.
func connectPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*postgres.Connection, error) {
	opts := postgres.DefaultPoolOptions()
	opts.MaxConns = int32(cfg.Database.MaxConns)
	opts.MinConns = int32(cfg.Database.MinConns)
	opts.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	opts.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	retrier := retry.New(
		retry.WithMaxAttempts(cfg.Database.ConnectRetries),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("database not ready, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)

	log.Info("connecting to database...")
	conn, err := retry.DoWithData(ctx, retrier, func(ctx context.Context) (*postgres.Connection, error) {
		return postgres.NewConnectionFromURL(ctx, cfg.Database.URL, opts)
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connection established")
	return conn, nil
}

func httpConfig(cfg *config.Config) httpapi.Config {
	c := httpapi.DefaultConfig()
	c.Host = cfg.HTTP.Host
	c.Port = cfg.HTTP.Port
	c.ReadTimeout = cfg.HTTP.ReadTimeout
	c.WriteTimeout = cfg.HTTP.WriteTimeout
	c.IdleTimeout = cfg.HTTP.IdleTimeout
	c.AllowedOrigins = cfg.HTTP.AllowedOrigins
	c.TrustedProxies = cfg.HTTP.TrustedProxies
	c.MaxPageSize = cfg.HTTP.MaxPageSize
	c.EnableMetrics = cfg.Observability.MetricsEnabled
	c.MetricsPath = cfg.Observability.MetricsPath
	c.EnableRegistration = cfg.Features.Registration
	c.Version = cfg.App.Version

	c.RateLimitRequests = 0
	if cfg.Features.RateLimit {
		c.RateLimitRequests = cfg.HTTP.RateLimitRequests
		c.RateLimitWindow = cfg.HTTP.RateLimitWindow
	}
	return c
}
