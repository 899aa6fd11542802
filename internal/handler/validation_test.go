package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/service"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"ok", "Password1!", true},
		{"ok all symbol kinds", "Aa1@$!%*?&", true},
		{"too short", "Aa1!xyz", false},
		{"no uppercase", "password1!", false},
		{"no lowercase", "PASSWORD1!", false},
		{"no digit", "Password!!", false},
		{"no symbol", "Password11", false},
		{"symbol outside the allowed set", "Password1#", false},
		{"space is not allowed", "Password 1!", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePassword(tc.password)
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validateEmail("alice@example.com"))
	assert.Error(t, validateEmail(""))
	assert.Error(t, validateEmail("   "))
	assert.Error(t, validateEmail("not-an-email"))
}

func TestValidateIssuePayloads(t *testing.T) {
	title := "Fix login"
	blank := "   "
	badStatus := domain.Status("SHIPPED")
	badPriority := domain.Priority("URGENT")

	assert.Error(t, validateIssueCreate(service.IssueCreateRequest{}))
	assert.Error(t, validateIssueCreate(service.IssueCreateRequest{Title: &blank}))
	assert.NoError(t, validateIssueCreate(service.IssueCreateRequest{Title: &title}))
	assert.Error(t, validateIssueCreate(service.IssueCreateRequest{Title: &title, Status: &badStatus}))
	assert.Error(t, validateIssueCreate(service.IssueCreateRequest{Title: &title, Priority: &badPriority}))

	// patch may omit the title entirely but not blank it
	assert.NoError(t, validateIssuePatch(service.IssueCreateRequest{}))
	assert.Error(t, validateIssuePatch(service.IssueCreateRequest{Title: &blank}))
	assert.Error(t, validateIssuePatch(service.IssueCreateRequest{Status: &badStatus}))
}

func TestValidateComment(t *testing.T) {
	assert.NoError(t, validateComment(service.CommentCreateRequest{Content: "hello"}))
	assert.Error(t, validateComment(service.CommentCreateRequest{Content: "   "}))
	assert.Error(t, validateComment(service.CommentCreateRequest{}))
}
