// app is the operator CLI. Run without arguments for usage.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"inventory-service/internal/adapters/cli"
	"inventory-service/internal/app"
	"inventory-service/internal/config"
	"inventory-service/internal/core"
	"inventory-service/internal/db"
	"inventory-service/internal/logging"
	"inventory-service/internal/notify"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, cli.ErrUsage)
		os.Exit(2)
	}

	cfg, err := config.LoadTools()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	notifier := notify.NewLogNotifier(logger.Named("notify"))
	observers := &core.Observers{
		Products: []core.ProductObserver{notifier},
		Orders:   []core.OrderObserver{notifier},
	}
	inventory := core.NewInventoryService(pool, observers)
	purchaseOrders := core.NewPurchaseOrderService(pool, inventory, observers)
	salesOrders := core.NewSalesOrderService(pool, inventory, observers)
	svc := app.NewAppService(app.Services{
		Users:          core.NewUserService(pool),
		Products:       core.NewProductService(pool, inventory, nil, observers),
		Inventory:      inventory,
		Suppliers:      core.NewSupplierService(pool),
		PurchaseOrders: purchaseOrders,
		SalesOrders:    salesOrders,
		Reports:        core.NewReportingService(pool, purchaseOrders, salesOrders),
	})

	if err := cli.Run(ctx, svc, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
