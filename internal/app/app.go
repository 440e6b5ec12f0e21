// Package app wires the search service together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/mekongmart/search-service/internal/config"
	"github.com/mekongmart/search-service/internal/event"
	httphandler "github.com/mekongmart/search-service/internal/handler/http"
	"github.com/mekongmart/search-service/internal/index/elastic"
	"github.com/mekongmart/search-service/internal/repository/postgres"
	"github.com/mekongmart/search-service/internal/service"
	"github.com/mekongmart/search-service/pkg/database"
	"github.com/mekongmart/search-service/pkg/health"
	pkgkafka "github.com/mekongmart/search-service/pkg/kafka"
)

// App wires together all dependencies and runs the search service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	cache      *redis.Client
	producer   *pkgkafka.Producer
	consumers  []*pkgkafka.Consumer
	cron       *cron.Cron
	reindex    *service.ReindexCoordinator
	httpServer *http.Server
}

// NewApp creates the application, initializing all dependencies. Optional
// subsystems (index engine, redis cache, kafka, cron reindex) come up only
// when configured; the datastore is the one hard requirement.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}

	products := postgres.NewProductRepository(pool)
	posts := postgres.NewPostRepository(pool)
	categories := postgres.NewCategoryRepository(pool)
	users := postgres.NewUserRepository(pool)

	// Index engine. A failed Initialize is a warning, not a startup failure:
	// the service degrades to fallback-only and retries lazily on first use.
	idx := elastic.New(cfg.ElasticsearchURL, cfg.IndexPrefix, logger)
	if idx.Enabled() {
		if err := idx.Initialize(ctx); err != nil {
			logger.Warn("index engine unavailable at startup, continuing in fallback mode",
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("index engine initialized", slog.String("url", cfg.ElasticsearchURL))
		}
	} else {
		logger.Info("index engine disabled, running fallback-only")
	}

	// Suggestion cache.
	var cacheClient *redis.Client
	if cfg.CacheEnabled() {
		cacheClient, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			logger.Warn("redis unavailable, suggestion cache disabled", slog.String("error", err.Error()))
			cacheClient = nil
		}
	}
	suggestCache := service.NewSuggestionCache(cacheClient, cfg.SuggestCacheTTL)

	// Kafka producer for reindex completion events.
	brokers := cfg.Brokers()
	var producer *pkgkafka.Producer
	var publisher service.EventPublisher
	if len(brokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(brokers), logger)
		publisher = producer
	}

	// Service layer.
	productSearcher := service.NewProductSearcher(idx, products, categories, logger)
	postSearcher := service.NewPostSearcher(idx, posts, logger)
	userSearcher := service.NewUserSearcher(users, logger)
	globalSearcher := service.NewGlobalSearcher(productSearcher, postSearcher, userSearcher, logger)
	suggester := service.NewSuggester(idx, products, suggestCache, logger)
	indexer := service.NewIndexer(idx, logger)
	reindex := service.NewReindexCoordinator(idx, products, posts, categories, publisher, cfg.ReindexBatchSize, logger)

	// Kafka consumers keeping the index in sync with catalog and feed events.
	var consumers []*pkgkafka.Consumer
	if len(brokers) > 0 {
		handler := event.NewSyncHandler(indexer, logger)
		for _, topic := range event.Topics() {
			consumerCfg := pkgkafka.ConsumerConfig{
				Brokers:  brokers,
				GroupID:  cfg.ConsumerGroup,
				Topic:    topic,
				MinBytes: 1,
				MaxBytes: 10e6, // 10 MB
			}
			consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, handler.Handle, logger))
		}
		logger.Info("kafka consumers initialized",
			slog.Any("brokers", brokers),
			slog.Int("topic_count", len(event.Topics())),
		)
	}

	// Scheduled reindex reconciliation.
	var cronRunner *cron.Cron
	if cfg.ReindexSchedule != "" && idx.Enabled() {
		cronRunner = cron.New()
		_, err := cronRunner.AddFunc(cfg.ReindexSchedule, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if _, err := reindex.Run(runCtx); err != nil {
				logger.Error("scheduled reindex failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("invalid reindex schedule %q: %w", cfg.ReindexSchedule, err)
		}
		logger.Info("reindex schedule registered", slog.String("spec", cfg.ReindexSchedule))
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if idx.Enabled() {
		healthHandler.Register("elasticsearch", idx.Ping)
	}
	if len(brokers) > 0 {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return pkgkafka.PingBrokers(ctx, brokers)
		})
	}

	searchHandler := httphandler.NewSearchHandler(globalSearcher, productSearcher, postSearcher, userSearcher, suggester, idx, logger)
	adminHandler := httphandler.NewAdminHandler(indexer, reindex, logger)
	router := httphandler.NewRouter(searchHandler, adminHandler, healthHandler, cfg.ServiceName, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		cache:      cacheClient,
		producer:   producer,
		consumers:  consumers,
		cron:       cronRunner,
		reindex:    reindex,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server, Kafka consumers, and the reindex schedule,
// blocking until the context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func(c *pkgkafka.Consumer) {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}(c)
	}

	if a.cron != nil {
		a.cron.Start()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.cron != nil {
		<-a.cron.Stop().Done()
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
