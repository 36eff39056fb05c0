// internal/workers/report_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// ReportProcessor handles scheduled report refresh tasks
type ReportProcessor struct {
	reports ports.ReportService
	logger  *slog.Logger
}

// NewReportProcessor creates a new report processor
func NewReportProcessor(reports ports.ReportService, logger *slog.Logger) *ReportProcessor {
	return &ReportProcessor{
		reports: reports,
		logger:  logger.With(slog.String("processor", "reports")),
	}
}

// RefreshReports recomputes the sales summary and warms the cache so the
// dashboard never pays the aggregation cost on a request.
func (p *ReportProcessor) RefreshReports(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "refreshing sales reports")

	if err := p.reports.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh reports: %w", err)
	}

	p.logger.InfoContext(ctx, "sales reports refreshed successfully")
	return nil
}
