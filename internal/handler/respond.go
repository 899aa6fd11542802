package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/taskmanager/internal/domain"
)

// writeJSON encodes v as the response body with the given status
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError translates a service error into an HTTP response. Bodies are
// plain message strings. Unknown errors become a 500 without leaking detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.Error("internal error", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	switch derr.Kind {
	case domain.KindNotFound:
		http.Error(w, derr.Message, http.StatusNotFound)
	case domain.KindDuplicate:
		http.Error(w, derr.Message, http.StatusConflict)
	case domain.KindValidation:
		http.Error(w, derr.Message, http.StatusBadRequest)
	case domain.KindAuthentication:
		// bad credentials read as a malformed login attempt, not a 401
		http.Error(w, derr.Message, http.StatusBadRequest)
	case domain.KindAuthorization:
		http.Error(w, derr.Message, http.StatusForbidden)
	default:
		logger.Error("internal error", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// decodeJSON parses the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validation("Invalid request body")
	}
	return nil
}

// pathID parses a numeric path value, e.g. {id}
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0, domain.Validation("Invalid " + name)
	}
	return id, nil
}
