package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/repository/migrations"
)

// querier is the subset of sql.DB/sql.Tx the repositories execute against.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements domain.Store over a PostgreSQL connection pool.
type PostgresStore struct {
	db       *sql.DB
	logger   *slog.Logger
	accounts *PostgresAccountRepository
	issues   *PostgresIssueRepository
	comments *PostgresCommentRepository
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		db:       db,
		logger:   logger,
		accounts: NewPostgresAccountRepository(db, logger),
		issues:   NewPostgresIssueRepository(db, logger),
		comments: NewPostgresCommentRepository(db, logger),
	}
}

func (s *PostgresStore) Accounts() domain.AccountRepository { return s.accounts }
func (s *PostgresStore) Issues() domain.IssueRepository     { return s.issues }
func (s *PostgresStore) Comments() domain.CommentRepository { return s.comments }

// RunMigrations applies the embedded schema migrations.
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InTx runs fn against repositories bound to one transaction.
func (s *PostgresStore) InTx(ctx context.Context, fn func(domain.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txs := &txStore{
		accounts: s.accounts.withQuerier(tx),
		issues:   s.issues.withQuerier(tx),
		comments: s.comments.withQuerier(tx),
	}

	if err := fn(txs); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed",
				slog.String("error", rbErr.Error()),
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore is a store whose repositories share an open transaction.
type txStore struct {
	accounts *PostgresAccountRepository
	issues   *PostgresIssueRepository
	comments *PostgresCommentRepository
}

func (t *txStore) Accounts() domain.AccountRepository { return t.accounts }
func (t *txStore) Issues() domain.IssueRepository     { return t.issues }
func (t *txStore) Comments() domain.CommentRepository { return t.comments }

// InTx on a transactional store joins the open transaction.
func (t *txStore) InTx(ctx context.Context, fn func(domain.Store) error) error {
	return fn(t)
}
