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

var commentSortColumns = map[string]string{
	"id":        "c.id",
	"createdAt": "c.created_at",
	"updatedAt": "c.updated_at",
}

const commentSelect = `
	SELECT c.id, c.content, c.id_issue, c.created_at, c.updated_at,
	       a.id, a.email, a.role, a.created_at, a.updated_at
	FROM comments c
	JOIN accounts a ON a.id = c.id_author
`

// PostgresCommentRepository implements domain.CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	q      querier
	logger *slog.Logger
}

// NewPostgresCommentRepository creates a new comment repository
func NewPostgresCommentRepository(q querier, logger *slog.Logger) *PostgresCommentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentRepository{q: q, logger: logger}
}

func (r *PostgresCommentRepository) withQuerier(q querier) *PostgresCommentRepository {
	return &PostgresCommentRepository{q: q, logger: r.logger}
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var (
		comment domain.Comment
		author  domain.Account
	)

	err := row.Scan(
		&comment.ID,
		&comment.Content,
		&comment.IssueID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&author.ID,
		&author.Email,
		&author.Role,
		&author.CreatedAt,
		&author.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	comment.Author = &author
	return &comment, nil
}

// Create persists a new comment
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (content, id_author, id_issue)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		comment.Content,
		comment.Author.ID,
		comment.IssueID,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create comment",
			slog.Int64("issue_id", comment.IssueID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// GetByIDAndIssue retrieves a comment by the (comment, issue) pair
func (r *PostgresCommentRepository) GetByIDAndIssue(ctx context.Context, id, issueID int64) (*domain.Comment, error) {
	comment, err := scanComment(r.q.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1 AND c.id_issue = $2`, id, issueID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("Comment not found")
		}
		r.logger.Error("failed to get comment",
			slog.Int64("id", id),
			slog.Int64("issue_id", issueID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// ExistsByIDAndIssue reports whether the (comment, issue) pair resolves
func (r *PostgresCommentRepository) ExistsByIDAndIssue(ctx context.Context, id, issueID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1 AND id_issue = $2)`
	if err := r.q.QueryRowContext(ctx, query, id, issueID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check comment: %w", err)
	}
	return exists, nil
}

// ExistsByIDAndAuthorEmail reports whether the comment was authored by the
// account with the given email. False for unknown comment ids.
func (r *PostgresCommentRepository) ExistsByIDAndAuthorEmail(ctx context.Context, id int64, email string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM comments c
			JOIN accounts a ON a.id = c.id_author
			WHERE c.id = $1 AND a.email = $2
		)
	`
	if err := r.q.QueryRowContext(ctx, query, id, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check comment author: %w", err)
	}
	return exists, nil
}

// Update overwrites the comment's content
func (r *PostgresCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	query := `
		UPDATE comments
		SET content = $1, updated_at = now()
		WHERE id = $2
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query, comment.Content, comment.ID).Scan(&comment.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound("Comment not found")
		}
		return fmt.Errorf("failed to update comment: %w", err)
	}

	return nil
}

// DeleteByIDAndIssue removes a comment addressed by the (comment, issue) pair
func (r *PostgresCommentRepository) DeleteByIDAndIssue(ctx context.Context, id, issueID int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND id_issue = $2`, id, issueID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NotFound("Comment not found")
	}

	return nil
}

// DeleteByIssue removes every comment on the issue
func (r *PostgresCommentRepository) DeleteByIssue(ctx context.Context, issueID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id_issue = $1`, issueID); err != nil {
		return fmt.Errorf("failed to delete comments by issue: %w", err)
	}
	return nil
}

// DeleteByAuthor removes every comment authored by the account
func (r *PostgresCommentRepository) DeleteByAuthor(ctx context.Context, authorID int64) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id_author = $1`, authorID); err != nil {
		return fmt.Errorf("failed to delete comments by author: %w", err)
	}
	return nil
}

// DeleteByIssueAuthor removes every comment attached to issues authored by
// the account
func (r *PostgresCommentRepository) DeleteByIssueAuthor(ctx context.Context, authorID int64) error {
	query := `
		DELETE FROM comments
		WHERE id_issue IN (SELECT id FROM issues WHERE id_author = $1)
	`
	if _, err := r.q.ExecContext(ctx, query, authorID); err != nil {
		return fmt.Errorf("failed to delete comments by issue author: %w", err)
	}
	return nil
}

// ListByIssue returns one page of comments for the issue. An unknown issue id
// yields an empty page, not an error.
func (r *PostgresCommentRepository) ListByIssue(ctx context.Context, issueID int64, page pagination.Request) (*pagination.Page[*domain.Comment], error) {
	var total int64
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments c WHERE c.id_issue = $1`, issueID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	query := commentSelect + fmt.Sprintf(` WHERE c.id_issue = $1 ORDER BY %s LIMIT $2 OFFSET $3`,
		page.OrderBy(commentSortColumns, "c.created_at"))

	rows, err := r.q.QueryContext(ctx, query, issueID, page.Size, page.Offset())
	if err != nil {
		r.logger.Error("failed to list comments",
			slog.Int64("issue_id", issueID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return pagination.NewPage(comments, page, total), nil
}
