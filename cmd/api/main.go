package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/juju/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/pdc-service/internal/api/http"
	"github.com/spec-kit/pdc-service/internal/api/http/handlers"
	"github.com/spec-kit/pdc-service/internal/auth"
	"github.com/spec-kit/pdc-service/internal/changeset"
	"github.com/spec-kit/pdc-service/internal/config"
	"github.com/spec-kit/pdc-service/internal/messaging"
	"github.com/spec-kit/pdc-service/internal/observability"
	"github.com/spec-kit/pdc-service/internal/persistence"
	"github.com/spec-kit/pdc-service/internal/repository"
	"github.com/spec-kit/pdc-service/internal/repository/memory"
	"github.com/spec-kit/pdc-service/internal/service"
	"github.com/spec-kit/pdc-service/internal/worker"
	"github.com/spec-kit/pdc-service/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.Files, logger); err != nil {
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	publisher, err := messaging.New(cfg.MessageBus, redis, logger)
	if err != nil {
		return err
	}

	queue := worker.NewQueue(worker.Config{
		Workers:    cfg.MessageBus.Workers,
		QueueSize:  cfg.MessageBus.QueueSize,
		JobTimeout: cfg.MessageBus.PublishTimeout(),
	}, logger, metrics)
	queue.Start(ctx)

	deps, transactor := storage(pg, logger)
	notifier := service.NewChangesetNotifier(publisher, queue, cfg.MessageBus.Topic, cfg.MessageBus.PublishTimeout(), logger, metrics)
	alerter := service.NewNotificationService(queue, logger, metrics, cfg.Notification)
	aggregator := changeset.NewAggregator(deps.Changesets, alerter, changeset.AggregatorConfig{
		AnnounceThreshold: cfg.Changeset.AnnounceThreshold,
		Clock:             clock.WallClock,
	}, logger, metrics)
	lifecycle := changeset.NewLifecycle(transactor, aggregator, notifier, logger, metrics)
	services := service.NewServices(deps)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(cfg.Auth, tokens)

	probes := map[string]handlers.Pinger{}
	if pg.Enabled() {
		probes["postgres"] = pg
	}
	if redis.Enabled() {
		probes["redis"] = redis
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:        logger,
		Metrics:       metrics,
		Timeout:       cfg.App.RequestTimeout(),
		Auth:          auth.NewAuthMiddleware(tokens),
		Lifecycle:     lifecycle,
		CommentHeader: cfg.Changeset.CommentHeader,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, probes),
		Auth:       handlers.NewAuthHandler(authService),
		Products:   handlers.NewProductsHandler(services.Products, services.Releases),
		Components: handlers.NewComponentsHandler(services.Components),
		Content:    handlers.NewContentHandler(services.Repos, services.RPMs),
		Contacts:   handlers.NewContactsHandler(services.Contacts),
		Changesets: handlers.NewChangesetsHandler(services.Changesets),
		Metrics:    metrics,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("message_bus", publisher.Name()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := queue.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := publisher.Close(); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

// storage selects Postgres when configured and falls back to the in-memory
// store otherwise.
func storage(pg *persistence.Postgres, logger *zap.Logger) (service.Dependencies, persistence.Transactor) {
	if !pg.Enabled() {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return service.Dependencies{
			Products:     store.Products,
			Releases:     store.Releases,
			Components:   store.Components,
			Repos:        store.Repos,
			RPMs:         store.RPMs,
			Contacts:     store.Contacts,
			RoleContacts: store.RoleContacts,
			Changesets:   store.Changesets,
		}, store.DB
	}

	pool := pg.PoolHandle()
	return service.Dependencies{
		Products:     repository.NewProductRepository(pool),
		Releases:     repository.NewReleaseRepository(pool),
		Components:   repository.NewGlobalComponentRepository(pool),
		Repos:        repository.NewRepoRepository(pool),
		RPMs:         repository.NewRPMRepository(pool),
		Contacts:     repository.NewContactRepository(pool),
		RoleContacts: repository.NewRoleContactRepository(pool),
		Changesets:   repository.NewChangesetRepository(pool),
	}, persistence.NewPgTransactor(pool)
}
