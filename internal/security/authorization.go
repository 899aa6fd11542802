package security

import (
	"context"
	"log/slog"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/observability/metrics"
)

// Action identifies an operation a caller wants to perform
type Action string

const (
	ActionIssueCreate   Action = "issue.create"
	ActionIssueRead     Action = "issue.read"
	ActionIssueList     Action = "issue.list"
	ActionIssueUpdate   Action = "issue.update"
	ActionIssueDelete   Action = "issue.delete"
	ActionCommentAdd    Action = "comment.add"
	ActionCommentList   Action = "comment.list"
	ActionCommentEdit   Action = "comment.edit"
	ActionCommentDelete Action = "comment.delete"
	ActionAccountList   Action = "account.list"
	ActionAccountDelete Action = "account.delete"
)

// Actor is the authenticated caller as resolved from its token
type Actor struct {
	Email string
	Role  domain.Role
}

// Resource addresses the entity an action targets. Ids are zero when the
// action is not resource-scoped.
type Resource struct {
	IssueID   int64
	CommentID int64
}

// IssueResource addresses an issue
func IssueResource(issueID int64) Resource {
	return Resource{IssueID: issueID}
}

// CommentResource addresses a comment within an issue
func CommentResource(issueID, commentID int64) Resource {
	return Resource{IssueID: issueID, CommentID: commentID}
}

// OwnershipChecker answers the ownership predicates the rules consult.
// Checks are side-effect-free and false for unknown ids.
type OwnershipChecker interface {
	IsAssignee(ctx context.Context, issueID int64, identity string) (bool, error)
	IsAuthor(ctx context.Context, issueID int64, identity string) (bool, error)
	IsCommentAuthor(ctx context.Context, commentID int64, identity string) (bool, error)
}

// Authorizer evaluates a fixed rule table before a use case runs. A denial
// is an Authorization error; handlers never reach the service on deny.
type Authorizer struct {
	ownership OwnershipChecker
	logger    *slog.Logger
}

// NewAuthorizer creates a new authorizer
func NewAuthorizer(ownership OwnershipChecker, logger *slog.Logger) *Authorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authorizer{
		ownership: ownership,
		logger:    logger,
	}
}

// Authorize checks whether the actor may perform the action on the resource.
func (a *Authorizer) Authorize(ctx context.Context, actor Actor, action Action, res Resource) error {
	allowed, err := a.allowed(ctx, actor, action, res)
	if err != nil {
		return err
	}
	if !allowed {
		a.logger.Warn("access denied",
			slog.String("actor", actor.Email),
			slog.String("role", string(actor.Role)),
			slog.String("action", string(action)),
			slog.Int64("issue_id", res.IssueID),
			slog.Int64("comment_id", res.CommentID),
		)
		metrics.ObserveAuthzDenial(string(action))
		return domain.Authorization("Access denied")
	}
	return nil
}

func (a *Authorizer) allowed(ctx context.Context, actor Actor, action Action, res Resource) (bool, error) {
	isAdmin := actor.Role == domain.RoleAdmin

	switch action {
	case ActionIssueCreate, ActionIssueList, ActionAccountDelete:
		return isAdmin, nil

	case ActionIssueRead, ActionIssueUpdate, ActionCommentAdd, ActionCommentList:
		if isAdmin {
			return true, nil
		}
		return a.ownership.IsAssignee(ctx, res.IssueID, actor.Email)

	// issue deletion belongs to the author alone, admins included
	case ActionIssueDelete:
		return a.ownership.IsAuthor(ctx, res.IssueID, actor.Email)

	case ActionCommentEdit, ActionCommentDelete:
		return a.ownership.IsCommentAuthor(ctx, res.CommentID, actor.Email)

	case ActionAccountList:
		return true, nil
	}

	return false, nil
}
