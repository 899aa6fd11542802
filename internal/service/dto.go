package service

import (
	"time"

	"github.com/yourorg/taskmanager/internal/domain"
)

// AccountCreateRequest is the payload for registration and self-update
type AccountCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse is the public projection of an account. The password hash
// is never exposed.
type AccountResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// IssueCreateRequest is the payload shared by issue create, update and patch.
// All fields are pointers so patch can distinguish "absent" from "set".
type IssueCreateRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	AssigneeID  *int64           `json:"idAssignee"`
	Status      *domain.Status   `json:"currentStatus"`
	Priority    *domain.Priority `json:"priority"`
}

// IssueResponse is the projection of an issue with author and assignee
// expanded to public account projections
type IssueResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Author      *AccountResponse `json:"author"`
	Assignee    *AccountResponse `json:"assignee,omitempty"`
	Status      domain.Status    `json:"currentStatus"`
	Priority    domain.Priority  `json:"priority"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// CommentCreateRequest is the payload for adding or editing a comment
type CommentCreateRequest struct {
	Content string `json:"content"`
}

// CommentResponse is the projection of a comment
type CommentResponse struct {
	ID        int64            `json:"id"`
	Content   string           `json:"content"`
	Author    *AccountResponse `json:"author"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
