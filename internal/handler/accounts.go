package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/taskmanager/internal/domain"
	"github.com/yourorg/taskmanager/internal/security"
	"github.com/yourorg/taskmanager/internal/security/middleware"
	"github.com/yourorg/taskmanager/internal/service"
	"github.com/yourorg/taskmanager/pkg/pagination"
)

// AccountHandler exposes registration and account management endpoints
type AccountHandler struct {
	accounts   *service.AccountService
	authorizer *security.Authorizer
	logger     *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *service.AccountService, authorizer *security.Authorizer, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts:   accounts,
		authorizer: authorizer,
		logger:     logger,
	}
}

// Create handles POST /accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.AccountCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := validateAccountRequest(req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	account, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, account)
}

// List handles GET /accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionAccountList, security.Resource{}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.accounts.List(r.Context(), pagination.Parse(r.URL.Query()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, page)
}

// Me handles GET /accounts/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	account, err := h.accounts.GetCurrent(r.Context(), actor.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, account)
}

// Update handles PUT /accounts, the caller updating its own record
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	var req service.AccountCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := validateAccountRequest(req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	account, err := h.accounts.Update(r.Context(), actor.Email, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, account)
}

// DeleteByID handles DELETE /accounts/{id}, an admin-only operation
func (h *AccountHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if err := h.authorizer.Authorize(r.Context(), actor, security.ActionAccountDelete, security.Resource{}); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.accounts.DeleteByID(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteOwn handles DELETE /accounts
func (h *AccountHandler) DeleteOwn(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)

	if err := h.accounts.DeleteOwn(r.Context(), actor.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actorFromRequest builds the security actor from the validated token
// claims attached by the JWT middleware
func actorFromRequest(r *http.Request) security.Actor {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		return security.Actor{}
	}
	return security.Actor{
		Email: claims.Email,
		Role:  domain.Role(claims.Role),
	}
}
