package domain

import (
	"context"
	"time"
)

// RoleAdmin is the only role with access to the admin API.
const RoleAdmin = "admin"

// User is a provisioned administrator account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserStore is the persistence contract for administrator accounts.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, username, email, passwordHash string) (*User, error)
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}
