package domain

import (
	"context"
	"time"

	"github.com/yourorg/taskmanager/pkg/pagination"
)

// Role designates an account's privilege level
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Account represents a registered user identity
type Account struct {
	ID           int64
	Email        string // Unique email address
	PasswordHash string // Bcrypt hashed password (never returned in API)
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountRepository defines data access for accounts
type AccountRepository interface {
	// Create persists a new account. Returns a Duplicate error when the
	// email is already taken.
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, account *Account) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page pagination.Request) (*pagination.Page[*Account], error)
}
