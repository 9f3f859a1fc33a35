package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/database"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/health"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/httpclient"
	pkgkafka "github.com/sakibbengal/Bengal-Boats-sub000/pkg/kafka"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/middleware"
	"github.com/sakibbengal/Bengal-Boats-sub000/pkg/tracing"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/client"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/config"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/event"
	handler "github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/handler/http"
	redisrepo "github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/repository/redis"
	"github.com/sakibbengal/Bengal-Boats-sub000/services/storefront/internal/service"
)

const serviceName = "storefront-service"

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Redis holds the cart cache.
	redisCfg := database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	}
	rdb, err := database.NewRedisClient(ctx, redisCfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", redisCfg.Addr()),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka is optional; without brokers the storefront runs without events.
	var (
		producer  *pkgkafka.Producer
		publisher service.EventPublisher
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, cart and order events are disabled")
	}

	// Order submission is not idempotent, so the client never retries POSTs.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.OrderSubmitTimeout
	httpCfg.RetryNonIdempotent = false
	orderHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpCfg),
		httpclient.DefaultCircuitBreakerConfig("order-service"),
		logger,
	).WithFallback(client.CircuitOpenFallback)
	orderClient := client.NewOrderClient(orderHTTP, strings.TrimRight(cfg.OrderServiceURL, "/"), logger)

	// Build the dependency graph.
	cache := redisrepo.NewCartCache(rdb, cfg.CartTTLDuration())
	cartService := service.NewCartService(cache, publisher, logger)
	checkoutService := service.NewCheckoutService(cartService, orderClient, publisher, logger, cfg.OrderSubmitTimeout)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	checkoutLimit := middleware.RateLimitConfig{
		RPS:   cfg.CheckoutRateLimitRPS,
		Burst: cfg.CheckoutRateLimitBurst,
	}

	router := handler.NewRouter(cartService, checkoutService, healthHandler, cors, checkoutLimit, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.OrderSubmitTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		rdb:            rdb,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
