package core

import (
	"context"
	"time"
)

// User is an authenticated system user. PasswordHash never leaves the service layer.
type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FullName     string     `json:"full_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Actor returns the identity used to authorize this user's requests.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// UserInput holds the fields required to create a user.
type UserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     Role
}

// MinPasswordLength is enforced on user creation.
const MinPasswordLength = 8

// UserService provides user lookup, creation and credential checks.
type UserService interface {
	// CreateUser hashes the password with bcrypt and inserts the user.
	CreateUser(ctx context.Context, actor Actor, in UserInput) (*User, error)

	// GetByUsername finds an active user by username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByID returns a user by primary key.
	GetByID(ctx context.Context, userID int) (*User, error)

	// ListUsers returns all users ordered by username.
	ListUsers(ctx context.Context, actor Actor) ([]User, error)

	// Authenticate verifies a username-or-email and password, stamps last_login,
	// and returns the user. Any mismatch yields ErrInvalidCredentials.
	Authenticate(ctx context.Context, login, password string) (*User, error)
}
