package handler

import (
	"net/mail"
	"strings"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/service"
)

const passwordSymbols = "@$!%*?&"

// validateAccountRequest checks registration and self-update payloads
func validateAccountRequest(req service.AccountCreateRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	return validatePassword(req.Password)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return domain.Validation("Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Validation("Invalid email format")
	}
	return nil
}

// validatePassword enforces the password policy: at least 8 characters,
// one uppercase, one lowercase, one digit and one symbol from @$!%*?&,
// drawn only from that character set.
func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.Validation("Password must be at least 8 characters")
	}
	var upper, lower, digit, symbol bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		default:
			return domain.Validation("Password contains invalid characters")
		}
	}
	if !upper || !lower || !digit || !symbol {
		return domain.Validation("Password must contain uppercase, lowercase, digit and special character")
	}
	return nil
}

// validateIssueCreate checks payloads for issue creation and full update,
// where a non-blank title is mandatory
func validateIssueCreate(req service.IssueCreateRequest) error {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return domain.Validation("Title is required")
	}
	return validateIssuePatch(req)
}

// validateIssuePatch checks only the fields present in the payload
func validateIssuePatch(req service.IssueCreateRequest) error {
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return domain.Validation("Title must not be blank")
	}
	if req.Status != nil && !req.Status.Valid() {
		return domain.Validation("Invalid status")
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return domain.Validation("Invalid priority")
	}
	return nil
}

func validateComment(req service.CommentCreateRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return domain.Validation("Content is required")
	}
	return nil
}
