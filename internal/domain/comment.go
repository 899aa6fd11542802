package domain

import (
	"context"
	"time"

	"github.com/yourorg/taskmanager/pkg/pagination"
)

// Comment is scoped to a single issue and authored by an account. Author and
// issue references are immutable after creation.
type Comment struct {
	ID        int64
	Content   string
	Author    *Account
	IssueID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentRepository defines data access for comments. Comment lookups are
// keyed on the (comment, issue) pair so a comment cannot be addressed through
// a foreign issue id.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByIDAndIssue(ctx context.Context, id, issueID int64) (*Comment, error)
	ExistsByIDAndIssue(ctx context.Context, id, issueID int64) (bool, error)
	// ExistsByIDAndAuthorEmail reports whether the comment exists and was
	// authored by the account with the given email.
	ExistsByIDAndAuthorEmail(ctx context.Context, id int64, email string) (bool, error)
	Update(ctx context.Context, comment *Comment) error
	DeleteByIDAndIssue(ctx context.Context, id, issueID int64) error
	// DeleteByIssue removes every comment on the issue.
	DeleteByIssue(ctx context.Context, issueID int64) error
	// DeleteByAuthor removes every comment authored by the account.
	DeleteByAuthor(ctx context.Context, authorID int64) error
	// DeleteByIssueAuthor removes every comment attached to issues authored
	// by the account.
	DeleteByIssueAuthor(ctx context.Context, authorID int64) error
	ListByIssue(ctx context.Context, issueID int64, page pagination.Request) (*pagination.Page[*Comment], error)
}
