package service

import (
	"context"
	"log/slog"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/observability/metrics"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

// IssueService orchestrates issue and comment lifecycle operations. Each
// operation touching more than one table runs in a single transaction.
type IssueService struct {
	store  domain.Store
	logger *slog.Logger
}

// NewIssueService creates a new issue service
func NewIssueService(store domain.Store, logger *slog.Logger) *IssueService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IssueService{
		store:  store,
		logger: logger,
	}
}

// Create persists a new issue authored by the caller. An assignee id that
// does not resolve to an account fails the whole operation.
func (s *IssueService) Create(ctx context.Context, req IssueCreateRequest, identity string) (*IssueResponse, error) {
	var resp *IssueResponse
	err := s.store.InTx(ctx, func(st domain.Store) error {
		assignee, err := resolveAssignee(ctx, st, req.AssigneeID)
		if err != nil {
			return err
		}

		author, err := st.Accounts().GetByEmail(ctx, identity)
		if err != nil {
			return err
		}

		issue := &domain.Issue{Author: author}
		applyIssueReplace(issue, req, assignee)

		if err := st.Issues().Create(ctx, issue); err != nil {
			return err
		}
		resp = toIssueResponse(issue)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("issue created",
		slog.Int64("issue_id", resp.ID),
		slog.String("author", identity),
	)
	metrics.ObserveIssueCreated()

	return resp, nil
}

// GetByID returns the issue projection
func (s *IssueService) GetByID(ctx context.Context, id int64) (*IssueResponse, error) {
	issue, err := s.store.Issues().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toIssueResponse(issue), nil
}

// List returns one page of all issues
func (s *IssueService) List(ctx context.Context, page pagination.Request) (*pagination.Page[*IssueResponse], error) {
	issues, err := s.store.Issues().List(ctx, page)
	if err != nil {
		return nil, err
	}
	return pagination.Map(issues, toIssueResponse), nil
}

// ListByAuthor returns one page of issues authored by the account
func (s *IssueService) ListByAuthor(ctx context.Context, authorID int64, page pagination.Request) (*pagination.Page[*IssueResponse], error) {
	issues, err := s.store.Issues().ListByAuthor(ctx, authorID, page)
	if err != nil {
		return nil, err
	}
	return pagination.Map(issues, toIssueResponse), nil
}

// ListByAssignee returns one page of issues assigned to the account
func (s *IssueService) ListByAssignee(ctx context.Context, assigneeID int64, page pagination.Request) (*pagination.Page[*IssueResponse], error) {
	issues, err := s.store.Issues().ListByAssignee(ctx, assigneeID, page)
	if err != nil {
		return nil, err
	}
	return pagination.Map(issues, toIssueResponse), nil
}

// Update replaces every mutable field of the issue with the request values.
// Fields absent from the request are reset, not preserved. Author and id
// never change.
func (s *IssueService) Update(ctx context.Context, id int64, req IssueCreateRequest) (*IssueResponse, error) {
	return s.mutate(ctx, id, req, applyIssueReplace)
}

// Patch overwrites only the fields present in the request.
func (s *IssueService) Patch(ctx context.Context, id int64, req IssueCreateRequest) (*IssueResponse, error) {
	return s.mutate(ctx, id, req, applyIssuePatch)
}

func (s *IssueService) mutate(ctx context.Context, id int64, req IssueCreateRequest, merge func(*domain.Issue, IssueCreateRequest, *domain.Account)) (*IssueResponse, error) {
	var resp *IssueResponse
	err := s.store.InTx(ctx, func(st domain.Store) error {
		issue, err := st.Issues().GetByID(ctx, id)
		if err != nil {
			return err
		}

		assignee, err := resolveAssignee(ctx, st, req.AssigneeID)
		if err != nil {
			return err
		}

		merge(issue, req, assignee)

		if err := st.Issues().Update(ctx, issue); err != nil {
			return err
		}
		resp = toIssueResponse(issue)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Delete removes the issue and its comments in one transaction.
func (s *IssueService) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(st domain.Store) error {
		exists, err := st.Issues().ExistsByID(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NotFound("Issue not found")
		}
		if err := st.Comments().DeleteByIssue(ctx, id); err != nil {
			return err
		}
		return st.Issues().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("issue deleted", slog.Int64("issue_id", id))
	return nil
}

// IsAssignee reports whether the identity is the issue's assignee. False for
// unknown issue ids.
func (s *IssueService) IsAssignee(ctx context.Context, issueID int64, identity string) (bool, error) {
	return s.store.Issues().ExistsByIDAndAssigneeEmail(ctx, issueID, identity)
}

// IsAuthor reports whether the identity authored the issue. False for
// unknown issue ids.
func (s *IssueService) IsAuthor(ctx context.Context, issueID int64, identity string) (bool, error) {
	return s.store.Issues().ExistsByIDAndAuthorEmail(ctx, issueID, identity)
}

// IsCommentAuthor reports whether the identity authored the comment. False
// for unknown comment ids.
func (s *IssueService) IsCommentAuthor(ctx context.Context, commentID int64, identity string) (bool, error) {
	return s.store.Comments().ExistsByIDAndAuthorEmail(ctx, commentID, identity)
}

// AddComment persists a comment on the issue authored by the caller
func (s *IssueService) AddComment(ctx context.Context, issueID int64, req CommentCreateRequest, identity string) (*CommentResponse, error) {
	var resp *CommentResponse
	err := s.store.InTx(ctx, func(st domain.Store) error {
		author, err := st.Accounts().GetByEmail(ctx, identity)
		if err != nil {
			return err
		}

		exists, err := st.Issues().ExistsByID(ctx, issueID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NotFound("Issue not found")
		}

		comment := &domain.Comment{
			Content: req.Content,
			Author:  author,
			IssueID: issueID,
		}
		if err := st.Comments().Create(ctx, comment); err != nil {
			return err
		}
		resp = toCommentResponse(comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveCommentCreated()
	return resp, nil
}

// ListComments returns one page of the issue's comments. An unknown issue id
// yields an empty page rather than a NotFound failure, mirroring the
// repository behavior.
func (s *IssueService) ListComments(ctx context.Context, issueID int64, page pagination.Request) (*pagination.Page[*CommentResponse], error) {
	comments, err := s.store.Comments().ListByIssue(ctx, issueID, page)
	if err != nil {
		return nil, err
	}
	return pagination.Map(comments, toCommentResponse), nil
}

// PatchComment overwrites the content of the comment addressed by the
// (comment, issue) pair
func (s *IssueService) PatchComment(ctx context.Context, issueID, commentID int64, req CommentCreateRequest) (*CommentResponse, error) {
	var resp *CommentResponse
	err := s.store.InTx(ctx, func(st domain.Store) error {
		comment, err := st.Comments().GetByIDAndIssue(ctx, commentID, issueID)
		if err != nil {
			return err
		}

		comment.Content = req.Content
		if err := st.Comments().Update(ctx, comment); err != nil {
			return err
		}
		resp = toCommentResponse(comment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteComment removes the comment addressed by the (comment, issue) pair
func (s *IssueService) DeleteComment(ctx context.Context, commentID, issueID int64) error {
	return s.store.InTx(ctx, func(st domain.Store) error {
		exists, err := st.Comments().ExistsByIDAndIssue(ctx, commentID, issueID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NotFound("Comment not found")
		}
		return st.Comments().DeleteByIDAndIssue(ctx, commentID, issueID)
	})
}
