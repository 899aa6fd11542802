package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/taskmanager/internal/security/ratelimit"
	"github.com/yourorg/taskmanager/internal/service"
)

// LoginRequest carries the credentials for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthHandler handles credential exchange for bearer tokens
type AuthHandler struct {
	auth    *service.AuthService
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler. limiter may be nil when
// login rate limiting is disabled.
func NewAuthHandler(auth *service.AuthService, limiter *ratelimit.Limiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		limiter: limiter,
		logger:  logger,
	}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	// limit attempts per email to slow down credential stuffing
	if h.limiter != nil && !h.limiter.Allow(r.Context(), req.Email) {
		h.logger.Warn("login rate limited", slog.String("email", req.Email))
		http.Error(w, "too many login attempts", http.StatusTooManyRequests)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}
