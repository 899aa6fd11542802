package domain

import (
	"context"
	"time"

	"github.com/yourorg/taskmanager/pkg/pagination"
)

// Status is the workflow state of an issue. Any value may be set by an
// update; there is no enforced transition graph.
type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusInProgress Status = "IN_PROGRESS"
	StatusInReview   Status = "IN_REVIEW"
	StatusDone       Status = "DONE"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusInReview, StatusDone:
		return true
	}
	return false
}

// Priority ranks an issue's urgency
type Priority string

const (
	PriorityNone   Priority = "NO_PRIORITY"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Issue represents a tracked task. Author is set once at creation and never
// changes; Assignee is optional.
type Issue struct {
	ID          int64
	Title       string
	Description *string
	Author      *Account
	Assignee    *Account
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueRepository defines data access for issues. Reads return issues with
// author and assignee expanded.
type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id int64) (*Issue, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	// ExistsByIDAndAssigneeEmail reports whether the issue exists and is
	// assigned to the account with the given email.
	ExistsByIDAndAssigneeEmail(ctx context.Context, id int64, email string) (bool, error)
	// ExistsByIDAndAuthorEmail reports whether the issue exists and was
	// authored by the account with the given email.
	ExistsByIDAndAuthorEmail(ctx context.Context, id int64, email string) (bool, error)
	Update(ctx context.Context, issue *Issue) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page pagination.Request) (*pagination.Page[*Issue], error)
	ListByAuthor(ctx context.Context, authorID int64, page pagination.Request) (*pagination.Page[*Issue], error)
	ListByAssignee(ctx context.Context, assigneeID int64, page pagination.Request) (*pagination.Page[*Issue], error)
	// DeleteByAuthor removes all issues authored by the account.
	DeleteByAuthor(ctx context.Context, authorID int64) error
	// ClearAssignee unassigns the account from every issue it is assigned to.
	ClearAssignee(ctx context.Context, assigneeID int64) error
}
