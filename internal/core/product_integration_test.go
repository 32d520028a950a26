package core_test

import (
	"context"
	"errors"
	"testing"

	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

func TestProduct_CreateRecordsOpeningStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	inv := core.NewInventoryService(pool, nil)
	products := core.NewProductService(pool, inv, nil, nil)

	p, err := products.CreateProduct(ctx, admin, core.ProductInput{
		SKU: "BOL-001", Name: "Bolt", Price: decimal.RequireFromString("0.40"), Quantity: 120,
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if p.Quantity != 120 {
		t.Errorf("Expected quantity 120, got %d", p.Quantity)
	}
	if p.MinThreshold != core.DefaultMinThreshold {
		t.Errorf("Expected default threshold %d, got %d", core.DefaultMinThreshold, p.MinThreshold)
	}

	history, err := inv.History(ctx, admin, p.ID, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 || history[0].Change != 120 || history[0].Reason != core.ReasonOpeningStock {
		t.Errorf("Expected one opening-stock row of +120, got %+v", history)
	}

	// A product created empty has no ledger rows.
	empty, err := products.CreateProduct(ctx, admin, core.ProductInput{
		SKU: "NUT-001", Name: "Nut", Price: decimal.RequireFromString("0.10"),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if got := logCount(t, pool, empty.ID); got != 0 {
		t.Errorf("Expected no log rows for empty product, got %d", got)
	}
}

func TestProduct_CreateRejectsDuplicatesAndBadInput(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	products := core.NewProductService(pool, core.NewInventoryService(pool, nil), nil, nil)

	var dup *core.DuplicateError
	_, err := products.CreateProduct(ctx, admin, core.ProductInput{
		SKU: "WID-001", Name: "Widget again", Price: decimal.NewFromInt(1),
	})
	if !errors.As(err, &dup) {
		t.Fatalf("Expected DuplicateError, got %v", err)
	}
	if dup.Field != "sku" {
		t.Errorf("Expected duplicate on sku, got %s", dup.Field)
	}

	var valErr *core.ValidationError
	if _, err := products.CreateProduct(ctx, admin, core.ProductInput{SKU: "X", Name: "X", Price: decimal.Zero}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for zero price, got %v", err)
	}
	if _, err := products.CreateProduct(ctx, admin, core.ProductInput{SKU: "X", Name: "X", Price: decimal.NewFromInt(1), Quantity: -1}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for negative opening stock, got %v", err)
	}

	var authErr *core.AuthorizationError
	if _, err := products.CreateProduct(ctx, staff, core.ProductInput{SKU: "X", Name: "X", Price: decimal.NewFromInt(1)}); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for staff, got %v", err)
	}
}

func TestProduct_ListFiltersAndSorts(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	products := core.NewProductService(pool, core.NewInventoryService(pool, nil), nil, nil)

	all, err := products.ListProducts(ctx, core.ProductFilter{SortBy: "-price"})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if all.Total != 3 || len(all.Products) != 3 {
		t.Fatalf("Expected 3 products, got total=%d len=%d", all.Total, len(all.Products))
	}
	if all.Products[0].SKU != "WID-001" || all.Products[2].SKU != "EMP-001" {
		t.Errorf("Expected price-descending order, got %s..%s", all.Products[0].SKU, all.Products[2].SKU)
	}

	low, err := products.ListProducts(ctx, core.ProductFilter{LowStock: true, SortBy: "quantity"})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if low.Total != 2 || low.Products[0].SKU != "EMP-001" || low.Products[1].SKU != "GAD-001" {
		t.Errorf("Expected EMP-001, GAD-001 as low stock, got %+v", low.Products)
	}

	search, err := products.ListProducts(ctx, core.ProductFilter{Search: "gadg"})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if search.Total != 1 || search.Products[0].ID != gadgetID {
		t.Errorf("Expected search to find the gadget, got %+v", search.Products)
	}

	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(20)
	ranged, err := products.ListProducts(ctx, core.ProductFilter{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if ranged.Total != 1 || ranged.Products[0].ID != gadgetID {
		t.Errorf("Expected only the gadget between 10 and 20, got %+v", ranged.Products)
	}

	paged, err := products.ListProducts(ctx, core.ProductFilter{Page: core.Page{Page: 2, Limit: 2}})
	if err != nil {
		t.Fatalf("ListProducts failed: %v", err)
	}
	if paged.Total != 3 || len(paged.Products) != 1 {
		t.Errorf("Expected 1 product on page 2 of 3, got total=%d len=%d", paged.Total, len(paged.Products))
	}

	var valErr *core.ValidationError
	if _, err := products.ListProducts(ctx, core.ProductFilter{MinPrice: &max, MaxPrice: &min}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for inverted price range, got %v", err)
	}
}

func TestProduct_UpdateLeavesQuantityAlone(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	rec := &lowStockRecorder{}
	obs := &core.Observers{Products: []core.ProductObserver{rec}}
	products := core.NewProductService(pool, core.NewInventoryService(pool, obs), nil, obs)

	name := "Widget Pro"
	threshold := 12
	p, err := products.UpdateProduct(ctx, admin, widgetID, core.ProductUpdate{Name: &name, MinThreshold: &threshold})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if p.Name != name || p.MinThreshold != 12 || p.Quantity != 10 {
		t.Errorf("Unexpected product after update: %+v", p)
	}
	if !p.Price.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("Price must be unchanged, got %s", p.Price)
	}
	if !p.IsLowStock() {
		t.Error("Raising the threshold above quantity should mark the product low stock")
	}
	if len(rec.events) != 1 || rec.events[0].Kind != core.ProductUpdated {
		t.Errorf("Expected one update event, got %+v", rec.events)
	}

	var nf *core.NotFoundError
	if _, err := products.UpdateProduct(ctx, admin, 999, core.ProductUpdate{Name: &name}); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError, got %v", err)
	}
}

func TestProduct_DeleteKeepsStockHistory(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	inv := core.NewInventoryService(pool, nil)
	products := core.NewProductService(pool, inv, nil, nil)
	sales := core.NewSalesOrderService(pool, inv, nil)

	if _, err := inv.Adjust(ctx, admin, emptyID, 4, "found in back room"); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	var authErr *core.AuthorizationError
	if err := products.DeleteProduct(ctx, staff, emptyID); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for staff, got %v", err)
	}

	if err := products.DeleteProduct(ctx, admin, emptyID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}
	var nf *core.NotFoundError
	if _, err := products.GetProduct(ctx, emptyID); !errors.As(err, &nf) {
		t.Errorf("Expected product to be gone, got %v", err)
	}
	if got := logCount(t, pool, emptyID); got != 1 {
		t.Errorf("Expected stock history to survive deletion, got %d rows", got)
	}

	if _, err := sales.CreateSalesOrder(ctx, staff, core.SalesOrderInput{
		CustomerID: customerID, ProductID: widgetID, Quantity: 1,
	}); err != nil {
		t.Fatalf("CreateSalesOrder failed: %v", err)
	}
	var ruleErr *core.BusinessRuleError
	if err := products.DeleteProduct(ctx, admin, widgetID); !errors.As(err, &ruleErr) {
		t.Errorf("Expected BusinessRuleError deleting an ordered product, got %v", err)
	}
}
