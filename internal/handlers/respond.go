// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bengkelpos/pos-be/internal/core/domain"
)

func respondJSON(logger *slog.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func respondError(logger *slog.Logger, w http.ResponseWriter, status int, message string) {
	respondJSON(logger, w, status, map[string]string{"error": message})
}

// respondDomainError maps domain errors onto HTTP statuses shared by every
// handler: validation -> 400, missing record -> 404, stock shortage -> 409.
// It reports whether the error was handled.
func respondDomainError(logger *slog.Logger, w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return false
	case domain.IsValidation(err):
		respondError(logger, w, http.StatusBadRequest, err.Error())
		return true
	case errors.Is(err, domain.ErrNotFound):
		respondError(logger, w, http.StatusNotFound, "Record not found")
		return true
	case domain.IsInsufficientStock(err):
		respondError(logger, w, http.StatusConflict, err.Error())
		return true
	}
	return false
}
