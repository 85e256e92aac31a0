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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/vault_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/vault_ledger/internal/adapters/database/pgsql"
	"github.com/SscSPs/vault_ledger/internal/adapters/mail"
	"github.com/SscSPs/vault_ledger/internal/adapters/notify"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/vault_ledger/internal/core/services"
	"github.com/SscSPs/vault_ledger/internal/handlers"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/migrations"
	"github.com/SscSPs/vault_ledger/pkg/database"
)

const shutdownTimeout = 10 * time.Second

// @title Vault Ledger API
// @version 1.0
// @description Transaction lifecycle and balance reconciliation for the vault ledger.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = notify.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logger.Info("Redis connection established.")
	}

	// Local subscribers always read from the hub. With Redis the hub is fed by the relay so
	// every instance sees every event; without it the dispatcher publishes to the hub directly.
	hub := notify.NewHub(0)
	var sinks []notify.Sink
	if redisClient != nil {
		sinks = append(sinks, notify.NewRedisSink(redisClient))
	} else {
		sinks = append(sinks, hub)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := notify.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaEventsTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		logger.Info("Kafka event sink enabled", slog.String("topic", cfg.KafkaEventsTopic))
	}
	dispatcher := notify.NewDispatcher(logger, cfg.NotifyWorkers, cfg.NotifyQueueSize, notify.WithSinks(sinks...))

	mailer, err := mail.New(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Secure:   cfg.SMTPSecure,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.NotifyFrom,
	}, logger)
	if err != nil {
		return err
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, services.Infrastructure{
		Publisher: dispatcher,
		Events:    hub,
		Mailer:    mailer,
		Queue:     dispatcher,
	})

	rateLimiter, err := newRateLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handlers.SignatureHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(rateLimiter))

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, time.Now())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx)
	})
	if redisClient != nil {
		relay := notify.NewRedisRelay(redisClient, hub, logger)
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.LedgerStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openStore selects the transaction store and returns its repositories with a close func.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.LedgerStore == config.StoreMemory {
		logger.Warn("Using in-memory ledger store; data is lost on restart")
		return memory.NewStore().Repositories(), func() {}, nil
	}

	logger.Info("Running database migrations...")
	if err := database.Migrate(cfg.DatabaseURL, migrations.FS, logger); err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	logger.Info("Database connection pool established.")
	return pgsql.NewRepositoryProvider(dbPool), func() { database.ClosePgxPool(dbPool, logger) }, nil
}

// newRateLimiter builds a per-IP limiter, shared through Redis when a client is available.
func newRateLimiter(formatted string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	store := memorystore.NewStore()
	if client != nil {
		store, err = redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "vault:ratelimit"})
		if err != nil {
			return nil, err
		}
	}
	return limiter.New(store, rate), nil
}
