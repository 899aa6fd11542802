package service

import (
	"context"

	"github.com/yourorg/taskmanager/internal/domain"
)

func toAccountResponse(a *domain.Account) *AccountResponse {
	if a == nil {
		return nil
	}
	return &AccountResponse{ID: a.ID, Email: a.Email}
}

func toIssueResponse(i *domain.Issue) *IssueResponse {
	return &IssueResponse{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Author:      toAccountResponse(i.Author),
		Assignee:    toAccountResponse(i.Assignee),
		Status:      i.Status,
		Priority:    i.Priority,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toCommentResponse(c *domain.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    toAccountResponse(c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// applyIssueReplace implements full-replace semantics: every mutable field is
// taken from the request, with absent status/priority falling back to their
// defaults and an absent assignee resetting the assignment. Identifier and
// author are untouched.
func applyIssueReplace(issue *domain.Issue, req IssueCreateRequest, assignee *domain.Account) {
	if req.Title != nil {
		issue.Title = *req.Title
	}
	issue.Description = req.Description
	issue.Assignee = assignee

	issue.Status = domain.StatusBacklog
	if req.Status != nil {
		issue.Status = *req.Status
	}
	issue.Priority = domain.PriorityNone
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
}

// applyIssuePatch implements partial-update semantics: only fields present in
// the request overwrite existing values.
func applyIssuePatch(issue *domain.Issue, req IssueCreateRequest, assignee *domain.Account) {
	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = req.Description
	}
	if req.AssigneeID != nil {
		issue.Assignee = assignee
	}
	if req.Status != nil {
		issue.Status = *req.Status
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
}

// resolveAssignee looks up the requested assignee. A nil id means no
// assignee; an unresolvable id is a NotFound failure.
func resolveAssignee(ctx context.Context, store domain.Store, id *int64) (*domain.Account, error) {
	if id == nil {
		return nil, nil
	}
	account, err := store.Accounts().GetByID(ctx, *id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NotFound("Assigned user not exist")
		}
		return nil, err
	}
	return account, nil
}
