package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/taskmanager/internal/security"
	"github.com/yourorg/taskmanager/internal/service"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

// CommentHandler exposes the comment endpoints nested under issues
type CommentHandler struct {
	issues     *service.IssueService
	authorizer *security.Authorizer
	logger     *slog.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(issues *service.IssueService, authorizer *security.Authorizer, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		issues:     issues,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Add handles POST /issues/{id}/comments
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionCommentAdd, security.IssueResource(issueID)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.CommentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := validateComment(req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.issues.AddComment(r.Context(), issueID, req, actor.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, comment)
}

// List handles GET /issues/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	issueID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionCommentList, security.IssueResource(issueID)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.issues.ListComments(r.Context(), issueID, pagination.Parse(r.URL.Query()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, page)
}

// Patch handles PATCH /issues/{id}/comments/{cid}
func (h *CommentHandler) Patch(w http.ResponseWriter, r *http.Request) {
	issueID, commentID, err := commentPathIDs(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionCommentEdit, security.CommentResource(issueID, commentID)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.CommentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := validateComment(req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.issues.PatchComment(r.Context(), issueID, commentID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, comment)
}

// Delete handles DELETE /issues/{id}/comments/{cid}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	issueID, commentID, err := commentPathIDs(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionCommentDelete, security.CommentResource(issueID, commentID)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.issues.DeleteComment(r.Context(), commentID, issueID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commentPathIDs(r *http.Request) (issueID, commentID int64, err error) {
	issueID, err = pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	commentID, err = pathID(r, "cid")
	if err != nil {
		return 0, 0, err
	}
	return issueID, commentID, nil
}
