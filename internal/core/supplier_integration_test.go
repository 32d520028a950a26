package core_test

import (
	"context"
	"errors"
	"testing"

	"inventory-service/internal/core"

	"github.com/shopspring/decimal"
)

func TestSupplier_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewSupplierService(pool)

	rating := decimal.RequireFromString("4.5")
	s, err := svc.CreateSupplier(ctx, admin, core.SupplierInput{
		Name: "Bolt Bros", Email: "sales@boltbros.test", Rating: &rating,
	})
	if err != nil {
		t.Fatalf("CreateSupplier failed: %v", err)
	}
	if s.DeliveryLeadTimeDays != core.DefaultDeliveryLeadTimeDays || !s.IsActive {
		t.Errorf("Expected default lead time and active, got %+v", s)
	}
	if s.ContactPerson != nil {
		t.Errorf("Expected empty contact person to be stored as NULL, got %q", *s.ContactPerson)
	}

	var dup *core.DuplicateError
	if _, err := svc.CreateSupplier(ctx, admin, core.SupplierInput{Name: "Acme Supply"}); !errors.As(err, &dup) {
		t.Errorf("Expected DuplicateError, got %v", err)
	}

	bad := decimal.NewFromInt(6)
	var valErr *core.ValidationError
	if _, err := svc.CreateSupplier(ctx, admin, core.SupplierInput{Name: "Too Good", Rating: &bad}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for rating 6, got %v", err)
	}

	inactive := false
	if _, err := svc.UpdateSupplier(ctx, admin, s.ID, core.SupplierUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateSupplier failed: %v", err)
	}
	active, err := svc.ListSuppliers(ctx, true)
	if err != nil {
		t.Fatalf("ListSuppliers failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != acmeID {
		t.Errorf("Expected only Acme to be active, got %+v", active)
	}
	all, err := svc.ListSuppliers(ctx, false)
	if err != nil {
		t.Fatalf("ListSuppliers failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 suppliers, got %d", len(all))
	}

	var authErr *core.AuthorizationError
	if err := svc.DeleteSupplier(ctx, staff, s.ID); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for staff, got %v", err)
	}
	if err := svc.DeleteSupplier(ctx, admin, s.ID); err != nil {
		t.Fatalf("DeleteSupplier failed: %v", err)
	}
	var nf *core.NotFoundError
	if _, err := svc.GetSupplier(ctx, s.ID); !errors.As(err, &nf) {
		t.Errorf("Expected NotFoundError after delete, got %v", err)
	}
}

func TestSupplier_DeleteRejectedWithPurchaseOrders(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	svc := core.NewSupplierService(pool)
	po := core.NewPurchaseOrderService(pool, core.NewInventoryService(pool, nil), nil)

	if _, err := po.CreatePurchaseOrder(ctx, buyer, core.PurchaseOrderInput{
		ProductID: widgetID, SupplierID: acmeID, Quantity: 1, UnitCost: decimal.NewFromInt(1),
	}); err != nil {
		t.Fatalf("CreatePurchaseOrder failed: %v", err)
	}

	var ruleErr *core.BusinessRuleError
	if err := svc.DeleteSupplier(ctx, admin, acmeID); !errors.As(err, &ruleErr) {
		t.Errorf("Expected BusinessRuleError, got %v", err)
	}
}
