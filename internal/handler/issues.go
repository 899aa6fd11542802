package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yourorg/taskmanager/internal/security"
	"github.com/yourorg/taskmanager/internal/service"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

// IssueHandler exposes the issue CRUD endpoints
type IssueHandler struct {
	issues     *service.IssueService
	authorizer *security.Authorizer
	logger     *slog.Logger
}

// NewIssueHandler creates a new issue handler
func NewIssueHandler(issues *service.IssueService, authorizer *security.Authorizer, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{
		issues:     issues,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Create handles POST /issues
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionIssueCreate, security.Resource{}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.IssueCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := validateIssueCreate(req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	issue, err := h.issues.Create(r.Context(), req, actor.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, issue)
}

// Get handles GET /issues/{id}
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionIssueRead, security.IssueResource(id)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	issue, err := h.issues.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, issue)
}

// List handles GET /issues
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionIssueList, security.Resource{}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.issues.List(r.Context(), pagination.Parse(r.URL.Query()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, page)
}

// Update handles PUT /issues/{id} with full replace semantics
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, validateIssueCreate, h.issues.Update)
}

// Patch handles PATCH /issues/{id}, overwriting only the fields present
func (h *IssueHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, validateIssuePatch, h.issues.Patch)
}

func (h *IssueHandler) mutate(
	w http.ResponseWriter,
	r *http.Request,
	validate func(service.IssueCreateRequest) error,
	apply func(ctx context.Context, id int64, req service.IssueCreateRequest) (*service.IssueResponse, error),
) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionIssueUpdate, security.IssueResource(id)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req service.IssueCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := validate(req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	issue, err := apply(r.Context(), id, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, issue)
}

// Delete handles DELETE /issues/{id}
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionIssueDelete, security.IssueResource(id)); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.issues.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
