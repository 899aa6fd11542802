package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

var issueSortColumns = map[string]string{
	"id":        "i.id",
	"title":     "i.title",
	"status":    "i.current_status",
	"priority":  "i.priority",
	"createdAt": "i.created_at",
	"updatedAt": "i.updated_at",
}

// issueSelect joins the author and, when present, the assignee so reads
// return fully expanded issues.
const issueSelect = `
	SELECT i.id, i.title, i.description, i.current_status, i.priority, i.created_at, i.updated_at,
	       a.id, a.email, a.role, a.created_at, a.updated_at,
	       s.id, s.email, s.role, s.created_at, s.updated_at
	FROM issues i
	JOIN accounts a ON a.id = i.id_author
	LEFT JOIN accounts s ON s.id = i.id_assignee
`

// PostgresIssueRepository implements domain.IssueRepository using PostgreSQL
type PostgresIssueRepository struct {
	q      querier
	logger *slog.Logger
}

// NewPostgresIssueRepository creates a new issue repository
func NewPostgresIssueRepository(q querier, logger *slog.Logger) *PostgresIssueRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresIssueRepository{q: q, logger: logger}
}

func (r *PostgresIssueRepository) withQuerier(q querier) *PostgresIssueRepository {
	return &PostgresIssueRepository{q: q, logger: r.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*domain.Issue, error) {
	var (
		issue       domain.Issue
		author      domain.Account
		description sql.NullString
		asgID       sql.NullInt64
		asgEmail    sql.NullString
		asgRole     sql.NullString
		asgCreated  sql.NullTime
		asgUpdated  sql.NullTime
	)

	err := row.Scan(
		&issue.ID,
		&issue.Title,
		&description,
		&issue.Status,
		&issue.Priority,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&author.ID,
		&author.Email,
		&author.Role,
		&author.CreatedAt,
		&author.UpdatedAt,
		&asgID,
		&asgEmail,
		&asgRole,
		&asgCreated,
		&asgUpdated,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		issue.Description = &description.String
	}
	issue.Author = &author
	if asgID.Valid {
		issue.Assignee = &domain.Account{
			ID:        asgID.Int64,
			Email:     asgEmail.String,
			Role:      domain.Role(asgRole.String),
			CreatedAt: asgCreated.Time,
			UpdatedAt: asgUpdated.Time,
		}
	}

	return &issue, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func assigneeID(issue *domain.Issue) sql.NullInt64 {
	if issue.Assignee == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: issue.Assignee.ID, Valid: true}
}

// Create persists a new issue authored by issue.Author
func (r *PostgresIssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	query := `
		INSERT INTO issues (title, description, id_author, id_assignee, current_status, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		issue.Title,
		nullString(issue.Description),
		issue.Author.ID,
		assigneeID(issue),
		issue.Status,
		issue.Priority,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create issue",
			slog.String("title", issue.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create issue: %w", err)
	}

	return nil
}

// GetByID retrieves an issue with author and assignee expanded
func (r *PostgresIssueRepository) GetByID(ctx context.Context, id int64) (*domain.Issue, error) {
	issue, err := scanIssue(r.q.QueryRowContext(ctx, issueSelect+` WHERE i.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Issue not found")
		}
		r.logger.Error("failed to get issue by id",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return issue, nil
}

// ExistsByID reports whether the issue exists
func (r *PostgresIssueRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM issues WHERE id = $1)`
	if err := r.q.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check issue: %w", err)
	}
	return exists, nil
}

// ExistsByIDAndAssigneeEmail reports whether the issue is assigned to the
// account with the given email. False for unknown issue ids.
func (r *PostgresIssueRepository) ExistsByIDAndAssigneeEmail(ctx context.Context, id int64, email string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM issues i
			JOIN accounts s ON s.id = i.id_assignee
			WHERE i.id = $1 AND s.email = $2
		)
	`
	if err := r.q.QueryRowContext(ctx, query, id, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check issue assignee: %w", err)
	}
	return exists, nil
}

// ExistsByIDAndAuthorEmail reports whether the issue was authored by the
// account with the given email. False for unknown issue ids.
func (r *PostgresIssueRepository) ExistsByIDAndAuthorEmail(ctx context.Context, id int64, email string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM issues i
			JOIN accounts a ON a.id = i.id_author
			WHERE i.id = $1 AND a.email = $2
		)
	`
	if err := r.q.QueryRowContext(ctx, query, id, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check issue author: %w", err)
	}
	return exists, nil
}

// Update overwrites the issue's mutable columns. The author column is never
// touched.
func (r *PostgresIssueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	query := `
		UPDATE issues
		SET title = $1, description = $2, id_assignee = $3, current_status = $4, priority = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		issue.Title,
		nullString(issue.Description),
		assigneeID(issue),
		issue.Status,
		issue.Priority,
		issue.ID,
	).Scan(&issue.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("Issue not found")
		}
		return fmt.Errorf("failed to update issue: %w", err)
	}

	return nil
}

// Delete removes an issue
func (r *PostgresIssueRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("Issue not found")
	}

	return nil
}

func (r *PostgresIssueRepository) list(ctx context.Context, page pagination.Request, where string, args ...any) (*pagination.Page[*domain.Issue], error) {
	countQuery := `SELECT COUNT(*) FROM issues i`
	if where != "" {
		countQuery += " WHERE " + where
	}

	var total int64
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count issues: %w", err)
	}

	query := issueSelect
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY %s LIMIT $%d OFFSET $%d",
		page.OrderBy(issueSortColumns, "i.created_at"), len(args)+1, len(args)+2)

	rows, err := r.q.QueryContext(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		r.logger.Error("failed to list issues", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}

	return pagination.NewPage(issues, page, total), nil
}

// List returns one page of all issues
func (r *PostgresIssueRepository) List(ctx context.Context, page pagination.Request) (*pagination.Page[*domain.Issue], error) {
	return r.list(ctx, page, "")
}

// ListByAuthor returns one page of issues authored by the account
func (r *PostgresIssueRepository) ListByAuthor(ctx context.Context, authorID int64, page pagination.Request) (*pagination.Page[*domain.Issue], error) {
	return r.list(ctx, page, "i.id_author = $1", authorID)
}

// ListByAssignee returns one page of issues assigned to the account
func (r *PostgresIssueRepository) ListByAssignee(ctx context.Context, assigneeID int64, page pagination.Request) (*pagination.Page[*domain.Issue], error) {
	return r.list(ctx, page, "i.id_assignee = $1", assigneeID)
}

// DeleteByAuthor removes all issues authored by the account
func (r *PostgresIssueRepository) DeleteByAuthor(ctx context.Context, authorID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM issues WHERE id_author = $1`, authorID); err != nil {
		return fmt.Errorf("failed to delete issues by author: %w", err)
	}
	return nil
}

// ClearAssignee unassigns the account from every issue
func (r *PostgresIssueRepository) ClearAssignee(ctx context.Context, assigneeID int64) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE issues SET id_assignee = NULL WHERE id_assignee = $1`, assigneeID); err != nil {
		return fmt.Errorf("failed to clear issue assignee: %w", err)
	}
	return nil
}
