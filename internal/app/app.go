// Package app wires the storefront server together: config, postgres,
// redis, kafka, services, and the HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tidegrove/storefront/internal/auth"
	cataloghandler "github.com/tidegrove/storefront/internal/catalog/handler/http"
	catalogpg "github.com/tidegrove/storefront/internal/catalog/repository/postgres"
	catalogservice "github.com/tidegrove/storefront/internal/catalog/service"
	carthandler "github.com/tidegrove/storefront/internal/cart/handler/http"
	cartredis "github.com/tidegrove/storefront/internal/cart/repository/redis"
	cartservice "github.com/tidegrove/storefront/internal/cart/service"
	"github.com/tidegrove/storefront/internal/config"
	"github.com/tidegrove/storefront/internal/event"
	orderhandler "github.com/tidegrove/storefront/internal/order/handler/http"
	orderpg "github.com/tidegrove/storefront/internal/order/repository/postgres"
	orderservice "github.com/tidegrove/storefront/internal/order/service"
	userhandler "github.com/tidegrove/storefront/internal/user/handler/http"
	userpg "github.com/tidegrove/storefront/internal/user/repository/postgres"
	userservice "github.com/tidegrove/storefront/internal/user/service"
	wishlisthandler "github.com/tidegrove/storefront/internal/wishlist/handler/http"
	wishlistpg "github.com/tidegrove/storefront/internal/wishlist/repository/postgres"
	wishlistservice "github.com/tidegrove/storefront/internal/wishlist/service"
	"github.com/tidegrove/storefront/migrations"
	"github.com/tidegrove/storefront/pkg/database"
	"github.com/tidegrove/storefront/pkg/health"
	pkgkafka "github.com/tidegrove/storefront/pkg/kafka"
	"github.com/tidegrove/storefront/pkg/tracing"
)

// App holds the wired server and its long-lived resources.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// New initializes all dependencies and builds the application.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.String("database", cfg.PostgresDB),
	)
	prometheus.MustRegister(database.NewPoolStatsCollector(pool))

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr))

	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	events := event.NewProducer(producer, logger)

	// Repositories.
	productRepo := catalogpg.NewProductRepository(pool)
	termRepo := catalogpg.NewTermRepository(pool)
	reviewRepo := catalogpg.NewReviewRepository(pool)
	cartRepo := cartredis.NewCartRepository(redisClient, cfg.CartTTL)
	wishlistRepo := wishlistpg.NewWishlistRepository(pool)
	orderRepo := orderpg.NewOrderRepository(pool)
	userRepo := userpg.NewUserRepository(pool)

	// Services.
	products := &catalogProducts{products: productRepo}
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAccessTTL)
	catalogSvc := catalogservice.NewCatalogService(productRepo, termRepo, events, logger)
	reviewSvc := catalogservice.NewReviewService(reviewRepo, productRepo, logger)
	cartSvc := cartservice.NewCartService(cartRepo, products, events, logger, cfg.CartTTL)
	wishlistSvc := wishlistservice.NewWishlistService(wishlistRepo, products, logger)
	orderSvc := orderservice.NewOrderService(orderRepo, cartSvc, events, logger)
	userSvc := userservice.NewUserService(userRepo, jwtManager, events, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	router := newRouter(routerDeps{
		catalog:        cataloghandler.NewCatalogHandler(catalogSvc, logger),
		admin:          cataloghandler.NewAdminHandler(catalogSvc, logger),
		reviews:        cataloghandler.NewReviewHandler(reviewSvc, logger),
		cart:           carthandler.NewCartHandler(cartSvc, logger),
		wishlist:       wishlisthandler.NewWishlistHandler(wishlistSvc, logger),
		orders:         orderhandler.NewOrderHandler(orderSvc, logger),
		adminOrd:       orderhandler.NewAdminOrderHandler(orderSvc, logger),
		users:          userhandler.NewUserHandler(userSvc, logger),
		jwt:            jwtManager,
		healthHandler:  healthHandler,
		logger:         logger,
		corsOrigins:    cfg.CORSAllowedOrigins,
		adminRateRPS:   int(cfg.AdminRateRPS),
		adminRateBurst: cfg.AdminRateBurst,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redis:          redisClient,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown stops components in dependency order: drain HTTP, flush
// traces, then close the broker and stores.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("shutdown complete")
	return errors.Join(errs...)
}
