package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	webAdapter "inventory-service/internal/adapters/web"
	"inventory-service/internal/app"
	"inventory-service/internal/cache"
	"inventory-service/internal/config"
	"inventory-service/internal/core"
	"inventory-service/internal/db"
	"inventory-service/internal/logging"
	"inventory-service/internal/notify"
	"inventory-service/internal/ratelimit"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	observers := &core.Observers{}
	logNotifier := notify.NewLogNotifier(logger.Named("notify"))
	observers.Products = append(observers.Products, logNotifier)
	observers.Orders = append(observers.Orders, logNotifier)

	var (
		productCache core.ProductCache
		limitStore   ratelimit.Store = ratelimit.NewMemoryStore()
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()

		pc := cache.NewProductCache(cache.NewStore(rdb, "inventory:", cfg.CacheTTL, logger.Named("cache")))
		productCache = pc
		observers.Products = append(observers.Products, pc)
		limitStore = ratelimit.NewRedisStore(rdb, "inventory:ratelimit:")
		logger.Info("redis enabled", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.PubSubProjectID != "" {
		client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
		if err != nil {
			return err
		}
		defer client.Close()

		publisher, err := notify.NewPubSubPublisher(
			client.Topic(cfg.PubSubStockTopic), client.Topic(cfg.PubSubOrdersTopic), logger.Named("pubsub"))
		if err != nil {
			return err
		}
		defer publisher.Close()
		observers.Products = append(observers.Products, publisher)
		observers.Orders = append(observers.Orders, publisher)
		logger.Info("pubsub enabled", zap.String("project", cfg.PubSubProjectID))
	}

	inventory := core.NewInventoryService(pool, observers)
	purchaseOrders := core.NewPurchaseOrderService(pool, inventory, observers)
	salesOrders := core.NewSalesOrderService(pool, inventory, observers)
	svc := app.NewAppService(app.Services{
		Users:          core.NewUserService(pool),
		Products:       core.NewProductService(pool, inventory, productCache, observers),
		Inventory:      inventory,
		Suppliers:      core.NewSupplierService(pool),
		PurchaseOrders: purchaseOrders,
		SalesOrders:    salesOrders,
		Reports:        core.NewReportingService(pool, purchaseOrders, salesOrders),
	})

	handler := webAdapter.NewHandler(svc, webAdapter.Options{
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTTTL,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        ratelimit.New(limitStore, cfg.RateLimitRequests, cfg.RateLimitWindow),
		Logger:         logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
