package main

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/modamarket/storefront/internal/api"
	"github.com/modamarket/storefront/internal/cart"
	"github.com/modamarket/storefront/internal/checkout"
	"github.com/modamarket/storefront/internal/config"
	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/notify"
	"github.com/modamarket/storefront/internal/paypal"
	"github.com/modamarket/storefront/internal/repository/postgres"
	"github.com/modamarket/storefront/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to database and apply migrations
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to redis for cart persistence and the product cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Wire repositories and services
	repos := postgres.NewRepositories(db, logger)
	hub := notify.NewHub()

	catalogService := service.NewCatalogService(repos, service.NewRedisProductCache(redisClient), logger)
	orderService := service.NewOrderService(repos, hub, logger)

	carts := cart.NewManager(cart.NewRedisStorage(redisClient), logger)
	gateway := paypal.NewClient(cfg.PayPal, logger)
	checkouts := checkout.NewManager(gateway, orderService, logger)

	// Log order activity for operators watching the process
	hub.Subscribe(func(order *domain.Order) {
		logger.Info("Order changed",
			zap.String("order_id", order.ID.String()),
			zap.String("status", string(order.Status)),
		)
	})

	router := api.NewRouter(cfg, api.Deps{
		Repos:     repos,
		Carts:     carts,
		Checkouts: checkouts,
		Catalog:   catalogService,
		Orders:    orderService,
	}, logger)

	logger.Info("Starting storefront server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
