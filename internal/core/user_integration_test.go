package core_test

import (
	"context"
	"errors"
	"testing"

	"inventory-service/internal/core"
)

func TestUser_CreateAndAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewUserService(pool)

	u, err := svc.CreateUser(ctx, admin, core.UserInput{
		Username: "bob", Email: "Bob@Example.com", Password: "correct-horse", FullName: "Bob", Role: core.RoleManager,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if u.PasswordHash == "correct-horse" || u.PasswordHash == "" {
		t.Error("Password must be stored hashed")
	}
	if u.LastLogin != nil {
		t.Error("New user must not have a last login")
	}

	got, err := svc.Authenticate(ctx, "bob", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate by username failed: %v", err)
	}
	if got.ID != u.ID || got.LastLogin == nil {
		t.Errorf("Expected last_login stamped for user %d, got %+v", u.ID, got)
	}
	if got.Actor() != (core.Actor{UserID: u.ID, Role: core.RoleManager}) {
		t.Errorf("Unexpected actor: %+v", got.Actor())
	}

	if _, err := svc.Authenticate(ctx, "BOB@example.com", "correct-horse"); err != nil {
		t.Errorf("Authenticate by email failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "bob", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for a wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "correct-horse"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for an unknown user, got %v", err)
	}
}

func TestUser_CreateRules(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	svc := core.NewUserService(pool)

	var authErr *core.AuthorizationError
	if _, err := svc.CreateUser(ctx, staff, core.UserInput{
		Username: "eve", Email: "eve@example.com", Password: "12345678", Role: core.RoleAdmin,
	}); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError for staff, got %v", err)
	}

	var valErr *core.ValidationError
	if _, err := svc.CreateUser(ctx, admin, core.UserInput{
		Username: "eve", Email: "eve@example.com", Password: "short", Role: core.RoleStaff,
	}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for short password, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, admin, core.UserInput{
		Username: "eve", Email: "not-an-email", Password: "12345678", Role: core.RoleStaff,
	}); !errors.As(err, &valErr) {
		t.Errorf("Expected ValidationError for bad email, got %v", err)
	}

	var dup *core.DuplicateError
	if _, err := svc.CreateUser(ctx, admin, core.UserInput{
		Username: "admin", Email: "other@example.com", Password: "12345678", Role: core.RoleStaff,
	}); !errors.As(err, &dup) {
		t.Errorf("Expected DuplicateError for taken username, got %v", err)
	}

	users, err := svc.ListUsers(ctx, admin)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 4 {
		t.Errorf("Expected 4 seeded users, got %d", len(users))
	}
	if _, err := svc.ListUsers(ctx, customer); !errors.As(err, &authErr) {
		t.Errorf("Expected AuthorizationError listing users as customer, got %v", err)
	}
}
