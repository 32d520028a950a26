package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for unknown users, inactive users and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

const userColumns = `id, username, email, password_hash, full_name, role, is_active, last_login, created_at`

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func scanUser(row interface{ Scan(...any) error }, u *User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName,
		&u.Role, &u.IsActive, &u.LastLogin, &u.CreatedAt)
}

func validateUserInput(in UserInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return &ValidationError{Field: "username", Message: "is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return &ValidationError{Field: "email", Message: "is not a valid address"}
	}
	if len(in.Password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", MinPasswordLength)}
	}
	if _, err := ParseRole(string(in.Role)); err != nil {
		return err
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, actor Actor, in UserInput) (*User, error) {
	if err := actor.Require(Role.CanManageUsers, "create users"); err != nil {
		return nil, err
	}
	if err := validateUserInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{}
	err = scanUser(s.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		strings.TrimSpace(in.Username), strings.ToLower(in.Email), string(hash), in.FullName, in.Role,
	), u)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &DuplicateError{Resource: "user", Field: "username or email", Value: in.Username}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1 AND is_active = true
		LIMIT 1`,
		username,
	), u)
	if err != nil {
		return nil, notFoundOr(err, "user", username, "fetch user")
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID int) (*User, error) {
	u := &User{}
	err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID), u)
	if err != nil {
		return nil, notFoundOr(err, "user", userID, "fetch user")
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context, actor Actor) ([]User, error) {
	if err := actor.Require(Role.CanManageUsers, "list users"); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *userService) Authenticate(ctx context.Context, login, password string) (*User, error) {
	u := &User{}
	err := scanUser(s.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE (username = $1 OR email = LOWER($1)) AND is_active = true
		LIMIT 1`,
		login,
	), u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.pool.QueryRow(ctx,
		"UPDATE users SET last_login = NOW() WHERE id = $1 RETURNING last_login", u.ID,
	).Scan(&u.LastLogin); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return u, nil
}
