package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

func TestIssueCreateDefaults(t *testing.T) {
	accounts, issues := newTestServices(t)

	createAccount(t, accounts, "author@example.com")

	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title: strPtr("Fix login"),
	})
	assert.Equal(t, "Fix login", issue.Title)
	assert.Equal(t, domain.StatusBacklog, issue.Status)
	assert.Equal(t, domain.PriorityNone, issue.Priority)
	assert.Nil(t, issue.Description)
	assert.Nil(t, issue.Assignee)
	require.NotNil(t, issue.Author)
	assert.Equal(t, "author@example.com", issue.Author.Email)
}

func TestIssueCreateUnknownAssignee(t *testing.T) {
	accounts, issues := newTestServices(t)

	createAccount(t, accounts, "author@example.com")

	missing := int64(99)
	_, err := issues.Create(context.Background(), IssueCreateRequest{
		Title:      strPtr("Fix login"),
		AssigneeID: &missing,
	}, "author@example.com")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Contains(t, err.Error(), "Assigned user not exist")
}

func TestIssueAuthorImmutable(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	createAccount(t, accounts, "other@example.com")

	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title: strPtr("Fix login"),
	})

	updated, err := issues.Update(ctx, issue.ID, IssueCreateRequest{
		Title: strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "author@example.com", updated.Author.Email)

	patched, err := issues.Patch(ctx, issue.ID, IssueCreateRequest{
		Title: strPtr("Renamed again"),
	})
	require.NoError(t, err)
	assert.Equal(t, "author@example.com", patched.Author.Email)
}

func TestIssueUpdateClearsAbsentFields(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	assignee := createAccount(t, accounts, "assignee@example.com")

	status := domain.StatusInProgress
	priority := domain.PriorityHigh
	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title:       strPtr("Fix login"),
		Description: strPtr("users cannot log in"),
		AssigneeID:  &assignee.ID,
		Status:      &status,
		Priority:    &priority,
	})

	// full replace with only a title resets everything else
	updated, err := issues.Update(ctx, issue.ID, IssueCreateRequest{
		Title: strPtr("Fix login"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.Assignee)
	assert.Equal(t, domain.StatusBacklog, updated.Status)
	assert.Equal(t, domain.PriorityNone, updated.Priority)
}

func TestIssuePatchPreservesAbsentFields(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	assignee := createAccount(t, accounts, "assignee@example.com")

	status := domain.StatusInProgress
	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title:       strPtr("Fix login"),
		Description: strPtr("users cannot log in"),
		AssigneeID:  &assignee.ID,
		Status:      &status,
	})

	patched, err := issues.Patch(ctx, issue.ID, IssueCreateRequest{
		Title: strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", patched.Title)
	require.NotNil(t, patched.Description)
	assert.Equal(t, "users cannot log in", *patched.Description)
	require.NotNil(t, patched.Assignee)
	assert.Equal(t, assignee.ID, patched.Assignee.ID)
	assert.Equal(t, domain.StatusInProgress, patched.Status)
}

func TestIssuePatchPriorityOnly(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "a@x.com")
	issue := createIssue(t, issues, "a@x.com", IssueCreateRequest{
		Title: strPtr("Fix login"),
	})

	priority := domain.PriorityHigh
	patched, err := issues.Patch(ctx, issue.ID, IssueCreateRequest{Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBacklog, patched.Status)
	assert.Equal(t, domain.PriorityHigh, patched.Priority)
	assert.Equal(t, "Fix login", patched.Title)
}

func TestIssueListByAuthorAndAssignee(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	author := createAccount(t, accounts, "author@example.com")
	assignee := createAccount(t, accounts, "assignee@example.com")

	createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title:      strPtr("assigned"),
		AssigneeID: &assignee.ID,
	})
	createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title: strPtr("unassigned"),
	})

	byAuthor, err := issues.ListByAuthor(ctx, author.ID, pagination.Default())
	require.NoError(t, err)
	assert.Len(t, byAuthor.Content, 2)

	byAssignee, err := issues.ListByAssignee(ctx, assignee.ID, pagination.Default())
	require.NoError(t, err)
	require.Len(t, byAssignee.Content, 1)
	assert.Equal(t, "assigned", byAssignee.Content[0].Title)

	none, err := issues.ListByAssignee(ctx, author.ID, pagination.Default())
	require.NoError(t, err)
	assert.Empty(t, none.Content)
}

func TestIssueMutateNotFound(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")

	_, err := issues.Update(ctx, 99, IssueCreateRequest{Title: strPtr("x")})
	assert.True(t, domain.IsNotFound(err))

	_, err = issues.Patch(ctx, 99, IssueCreateRequest{Title: strPtr("x")})
	assert.True(t, domain.IsNotFound(err))
}

func TestIssueDeleteCascadesComments(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title: strPtr("Fix login"),
	})

	comment, err := issues.AddComment(ctx, issue.ID, CommentCreateRequest{Content: "first"}, "author@example.com")
	require.NoError(t, err)

	require.NoError(t, issues.Delete(ctx, issue.ID))

	_, err = issues.GetByID(ctx, issue.ID)
	assert.True(t, domain.IsNotFound(err))

	_, err = issues.PatchComment(ctx, issue.ID, comment.ID, CommentCreateRequest{Content: "edit"})
	assert.True(t, domain.IsNotFound(err))
}

func TestIssueDeleteNotFound(t *testing.T) {
	_, issues := newTestServices(t)

	err := issues.Delete(context.Background(), 99)
	assert.True(t, domain.IsNotFound(err))
}

func TestOwnershipPredicates(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	assignee := createAccount(t, accounts, "assignee@example.com")
	createAccount(t, accounts, "other@example.com")

	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{
		Title:      strPtr("Fix login"),
		AssigneeID: &assignee.ID,
	})
	comment, err := issues.AddComment(ctx, issue.ID, CommentCreateRequest{Content: "on it"}, "assignee@example.com")
	require.NoError(t, err)

	cases := []struct {
		name     string
		check    func() (bool, error)
		expected bool
	}{
		{"assignee is assignee", func() (bool, error) { return issues.IsAssignee(ctx, issue.ID, "assignee@example.com") }, true},
		{"author is not assignee", func() (bool, error) { return issues.IsAssignee(ctx, issue.ID, "author@example.com") }, false},
		{"author is author", func() (bool, error) { return issues.IsAuthor(ctx, issue.ID, "author@example.com") }, true},
		{"other is not author", func() (bool, error) { return issues.IsAuthor(ctx, issue.ID, "other@example.com") }, false},
		{"assignee wrote the comment", func() (bool, error) { return issues.IsCommentAuthor(ctx, comment.ID, "assignee@example.com") }, true},
		{"author did not write it", func() (bool, error) { return issues.IsCommentAuthor(ctx, comment.ID, "author@example.com") }, false},
		{"unknown issue", func() (bool, error) { return issues.IsAssignee(ctx, 99, "assignee@example.com") }, false},
		{"unknown comment", func() (bool, error) { return issues.IsCommentAuthor(ctx, 99, "assignee@example.com") }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.check()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestAddCommentUnknownIssue(t *testing.T) {
	accounts, issues := newTestServices(t)

	createAccount(t, accounts, "author@example.com")

	_, err := issues.AddComment(context.Background(), 99, CommentCreateRequest{Content: "hello"}, "author@example.com")
	assert.True(t, domain.IsNotFound(err))
}

func TestListCommentsUnknownIssueIsEmpty(t *testing.T) {
	_, issues := newTestServices(t)

	page, err := issues.ListComments(context.Background(), 99, pagination.Default())
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.EqualValues(t, 0, page.TotalElements)
}

func TestPatchCommentPairResolution(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	first := createIssue(t, issues, "author@example.com", IssueCreateRequest{Title: strPtr("one")})
	second := createIssue(t, issues, "author@example.com", IssueCreateRequest{Title: strPtr("two")})

	comment, err := issues.AddComment(ctx, first.ID, CommentCreateRequest{Content: "hello"}, "author@example.com")
	require.NoError(t, err)

	// the comment exists, but not under that issue
	_, err = issues.PatchComment(ctx, second.ID, comment.ID, CommentCreateRequest{Content: "edit"})
	assert.True(t, domain.IsNotFound(err))

	patched, err := issues.PatchComment(ctx, first.ID, comment.ID, CommentCreateRequest{Content: "edited"})
	require.NoError(t, err)
	assert.Equal(t, "edited", patched.Content)
}

func TestDeleteComment(t *testing.T) {
	accounts, issues := newTestServices(t)
	ctx := context.Background()

	createAccount(t, accounts, "author@example.com")
	issue := createIssue(t, issues, "author@example.com", IssueCreateRequest{Title: strPtr("one")})

	comment, err := issues.AddComment(ctx, issue.ID, CommentCreateRequest{Content: "hello"}, "author@example.com")
	require.NoError(t, err)

	assert.True(t, domain.IsNotFound(issues.DeleteComment(ctx, 99, issue.ID)))
	require.NoError(t, issues.DeleteComment(ctx, comment.ID, issue.ID))

	page, err := issues.ListComments(ctx, issue.ID, pagination.Default())
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}
