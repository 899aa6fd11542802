package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

// uniqueViolation is the PostgreSQL error code for unique constraint conflicts
const uniqueViolation = "23505"

var accountSortColumns = map[string]string{
	"id":        "id",
	"email":     "email",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// PostgresAccountRepository implements domain.AccountRepository using PostgreSQL
type PostgresAccountRepository struct {
	q      querier
	logger *slog.Logger
}

// NewPostgresAccountRepository creates a new account repository
func NewPostgresAccountRepository(q querier, logger *slog.Logger) *PostgresAccountRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAccountRepository{q: q, logger: logger}
}

func (r *PostgresAccountRepository) withQuerier(q querier) *PostgresAccountRepository {
	return &PostgresAccountRepository{q: q, logger: r.logger}
}

// Create persists a new account. Concurrent registrations with the same email
// are resolved by the unique constraint and surfaced as a Duplicate error.
func (r *PostgresAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Role,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Duplicate("Account already exists")
		}
		r.logger.Error("failed to create account",
			slog.String("email", account.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *PostgresAccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	account := &domain.Account{}

	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Account not found")
		}
		r.logger.Error("failed to get account by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetByEmail retrieves an account by email
func (r *PostgresAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account := &domain.Account{}

	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM accounts
		WHERE email = $1
	`

	err := r.q.QueryRowContext(ctx, query, email).Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Account not found")
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return account, nil
}

// ExistsByEmail reports whether an account with the email exists
func (r *PostgresAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`

	if err := r.q.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check account email: %w", err)
	}
	return exists, nil
}

// Update overwrites an existing account's email, password hash and role
func (r *PostgresAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET email = $1, password_hash = $2, role = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.ID,
	).Scan(&account.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("Account not found")
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.Duplicate("Account already exists")
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	return nil
}

// Delete removes an account
func (r *PostgresAccountRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("Account not found")
	}

	return nil
}

// List returns one page of accounts
func (r *PostgresAccountRepository) List(ctx context.Context, page pagination.Request) (*pagination.Page[*domain.Account], error) {
	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM accounts
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, page.OrderBy(accountSortColumns, "created_at"))

	rows, err := r.q.QueryContext(ctx, query, page.Size, page.Offset())
	if err != nil {
		r.logger.Error("failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account := &domain.Account{}
		err := rows.Scan(
			&account.ID,
			&account.Email,
			&account.PasswordHash,
			&account.Role,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return pagination.NewPage(accounts, page, total), nil
}
