package core

import "fmt"

// Role is a user's authorization role. All permission decisions go through its
// capability methods so handlers and services never compare role strings directly.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleStaff    Role = "staff"
	RoleBuyer    Role = "buyer"
	RoleCustomer Role = "customer"
	RoleUser     Role = "user"
)

var knownRoles = map[Role]bool{
	RoleAdmin: true, RoleManager: true, RoleStaff: true,
	RoleBuyer: true, RoleCustomer: true, RoleUser: true,
}

// ParseRole validates s as a known role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !knownRoles[r] {
		return "", &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", s)}
	}
	return r, nil
}

// Capability is a named permission checked against a Role.
type Capability func(Role) bool

// CanManagePurchaseOrders covers creating, transitioning and deleting purchase orders.
func (r Role) CanManagePurchaseOrders() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleBuyer
}

// CanManageSalesOrders covers creating, transitioning and cancelling sales orders.
func (r Role) CanManageSalesOrders() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

func (r Role) CanAdjustStock() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

func (r Role) CanViewStockHistory() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) CanManageProducts() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) CanManageSuppliers() bool {
	return r == RoleAdmin || r == RoleManager
}

func (r Role) CanDeleteRecords() bool {
	return r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

func (r Role) CanViewReports() bool {
	return r == RoleAdmin || r == RoleManager
}

// SeesOnlyOwnOrders reports whether order listings must be scoped to the actor's own user id.
func (r Role) SeesOnlyOwnOrders() bool {
	return r == RoleCustomer || r == RoleUser
}

// Actor is the authenticated identity on whose behalf an operation runs.
type Actor struct {
	UserID int  `json:"user_id"`
	Role   Role `json:"role"`
}

// SystemActor is used by operator tooling that runs outside an HTTP request.
var SystemActor = Actor{UserID: 0, Role: RoleAdmin}

// Require returns an *AuthorizationError when the actor's role lacks capability.
func (a Actor) Require(capability Capability, action string) error {
	if !capability(a.Role) {
		return &AuthorizationError{Role: a.Role, Action: action}
	}
	return nil
}
