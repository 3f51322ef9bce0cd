package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/adapters/events"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/SscSPs/mobile_money_core/internal/core/services"
	"github.com/SscSPs/mobile_money_core/internal/handlers"
	"github.com/SscSPs/mobile_money_core/internal/middleware"
	"github.com/SscSPs/mobile_money_core/internal/platform/config"
	"github.com/SscSPs/mobile_money_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/mobile_money_core/internal/repositories/memory"
	"github.com/SscSPs/mobile_money_core/internal/utils"
	"github.com/SscSPs/mobile_money_core/pkg/database"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("Error closing audit publisher", slog.String("error", cerr.Error()))
		}
	}()

	svc := services.NewServiceContainer(
		repos,
		utils.NewBcryptPinHasher(cfg.BcryptCost),
		services.WithIdempotencyTTL(cfg.IdempotencyTTL),
	)

	rateLimiter, err := middleware.NewLimiter(ctx, cfg.RateLimit, cfg.RedisURL)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), middleware.CORS(cfg.CORSAllowedOrigins))
	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}
	handlers.RegisterRoutes(r, cfg, svc, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	worker := events.NewOutboxWorker(logger, repos.OutboxRepo, publisher, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		logger.Info("Outbox worker starting", slog.String("sink", cfg.AuditSink))
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	return g.Wait()
}

// openStorage returns the repository provider for the configured driver and
// a cleanup func to run on shutdown.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; state is lost on restart")
		store := memory.NewStore(memory.WithLockTimeout(cfg.LockTimeout))
		return memory.NewRepositoryProvider(store), func() {}, nil
	default:
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return portsrepo.RepositoryProvider{}, nil, err
			}
		}
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("initialize database pool: %w", err)
		}
		return pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout), func() {
			dbPool.Close()
			logger.Info("PostgreSQL connection pool closed.")
		}, nil
	}
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (portssvc.EventPublisher, error) {
	switch cfg.AuditSink {
	case config.AuditSinkKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
	case config.AuditSinkNats:
		return events.NewNatsPublisher(cfg.NatsURL, cfg.NatsAuditSubject)
	default:
		return events.NewLoggingPublisher(logger), nil
	}
}
