package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role           Role
		purchaseOrders bool
		salesOrders    bool
		stockHistory   bool
		suppliers      bool
		ownOrdersOnly  bool
	}{
		{RoleAdmin, true, true, true, true, false},
		{RoleManager, true, true, true, true, false},
		{RoleStaff, false, true, false, false, false},
		{RoleBuyer, true, false, false, false, false},
		{RoleCustomer, false, false, false, false, true},
		{RoleUser, false, false, false, false, true},
		{Role("intruder"), false, false, false, false, false},
	}
	for _, c := range cases {
		t.Run(string(c.role), func(t *testing.T) {
			require.Equal(t, c.purchaseOrders, c.role.CanManagePurchaseOrders())
			require.Equal(t, c.salesOrders, c.role.CanManageSalesOrders())
			require.Equal(t, c.stockHistory, c.role.CanViewStockHistory())
			require.Equal(t, c.suppliers, c.role.CanManageSuppliers())
			require.Equal(t, c.ownOrdersOnly, c.role.SeesOnlyOwnOrders())
		})
	}
}

func TestActorRequire(t *testing.T) {
	buyer := Actor{UserID: 7, Role: RoleBuyer}
	require.NoError(t, buyer.Require(Role.CanManagePurchaseOrders, "create purchase orders"))

	err := buyer.Require(Role.CanManageSalesOrders, "create sales orders")
	var authErr *AuthorizationError
	require.True(t, errors.As(err, &authErr))
	require.Equal(t, RoleBuyer, authErr.Role)
	require.Contains(t, err.Error(), "create sales orders")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("manager")
	require.NoError(t, err)
	require.Equal(t, RoleManager, r)

	_, err = ParseRole("Manager")
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	require.Equal(t, "role", valErr.Field)
}

func TestActorRefOmitsSystemActor(t *testing.T) {
	require.Nil(t, actorRef(SystemActor))
	ref := actorRef(Actor{UserID: 3, Role: RoleStaff})
	require.NotNil(t, ref)
	require.Equal(t, 3, *ref)
}
