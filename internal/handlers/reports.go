// internal/handlers/reports.go
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// ReportHandler serves the dashboard aggregates
type ReportHandler struct {
	service ports.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ports.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "reports")),
	}
}

// GetSummary handles GET /api/v1/reports/summary
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build report summary",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to build report summary")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, summary)
}
