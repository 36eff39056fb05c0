// internal/workers/excel_processor.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// Task type names
const (
	TypeExcelImport      = "excel:import"
	TypeRefreshReports   = "reports:refresh"
	TypeCleanupOldLogs   = "cleanup:old_logs"
	TypeCleanupTempFiles = "cleanup:temp_files"
)

// ExcelJobPayload is the task payload for an Excel import job.
type ExcelJobPayload struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
}

// ImportStatus tracks the lifecycle of an import job. It lives in the cache
// so the API can answer status polls without touching the database.
type ImportStatus struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	Filename    string    `json:"filename,omitempty"`
	QueuedAt    time.Time `json:"queued_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
	Imported    int       `json:"imported,omitempty"`
	Skipped     int       `json:"skipped,omitempty"`
	Error       string    `json:"error,omitempty"`
}

const importStatusTTL = 24 * time.Hour

// ExcelProcessor handles Excel inventory import tasks
type ExcelProcessor struct {
	inventory ports.InventoryService
	cache     ports.CacheRepository
	logger    *slog.Logger
}

// NewExcelProcessor creates a new Excel processor
func NewExcelProcessor(inventory ports.InventoryService, cache ports.CacheRepository, logger *slog.Logger) *ExcelProcessor {
	return &ExcelProcessor{
		inventory: inventory,
		cache:     cache,
		logger:    logger.With(slog.String("processor", "excel")),
	}
}

// ProcessExcel imports inventory items from an uploaded Excel file.
// Expected columns: Nama, Harga, Stok (header row is skipped).
func (p *ExcelProcessor) ProcessExcel(ctx context.Context, t *asynq.Task) error {
	var payload ExcelJobPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	p.logger.InfoContext(ctx, "processing Excel file",
		slog.String("job_id", payload.JobID),
		slog.String("file_path", payload.FilePath))

	p.updateStatus(ctx, payload.JobID, func(st *ImportStatus) {
		st.Status = "processing"
	})

	file, err := xlsx.OpenFile(payload.FilePath)
	if err != nil {
		p.failJob(ctx, payload, fmt.Sprintf("cannot open file: %v", err))
		return fmt.Errorf("failed to open Excel file: %w", err)
	}

	var imported, skipped int

	if len(file.Sheets) > 0 {
		sheet := file.Sheets[0]
		rowIdx := 0

		err = sheet.ForEachRow(func(r *xlsx.Row) error {
			// Skip header row
			if rowIdx == 0 {
				rowIdx++
				return nil
			}
			rowIdx++

			item := parseItemRow(r)
			if item == nil {
				skipped++
				return nil
			}

			if _, err := p.inventory.Upsert(ctx, item); err != nil {
				p.logger.WarnContext(ctx, "skipping invalid row",
					slog.String("job_id", payload.JobID),
					slog.Int("row", rowIdx),
					slog.String("error", err.Error()))
				skipped++
			} else {
				imported++
			}
			return nil
		})

		if err != nil {
			p.failJob(ctx, payload, fmt.Sprintf("cannot read rows: %v", err))
			return fmt.Errorf("failed to process Excel rows: %w", err)
		}
	}

	p.removeTempFile(payload.FilePath)

	p.updateStatus(ctx, payload.JobID, func(st *ImportStatus) {
		st.Status = "completed"
		st.CompletedAt = time.Now().UTC()
		st.Imported = imported
		st.Skipped = skipped
	})

	p.logger.InfoContext(ctx, "Excel processing completed",
		slog.String("job_id", payload.JobID),
		slog.Int("imported", imported),
		slog.Int("skipped", skipped))

	return nil
}

// parseItemRow reads one spreadsheet row into a new inventory item.
// Rows without a name are ignored.
func parseItemRow(r *xlsx.Row) *domain.InventoryItem {
	get := func(i int) string {
		c := r.GetCell(i)
		if c == nil {
			return ""
		}
		return strings.TrimSpace(c.String())
	}

	name := get(0)
	if name == "" {
		return nil
	}

	// Prices arrive as "15000", "15000.00" or "Rp 15.000" depending on who
	// exported the sheet, so parse through decimal instead of strconv.
	priceStr := strings.TrimSpace(strings.TrimPrefix(get(1), "Rp"))
	priceStr = strings.ReplaceAll(priceStr, ".", "")
	priceStr = strings.ReplaceAll(priceStr, ",", ".")
	price, err := decimal.NewFromString(priceStr)
	if err != nil || price.IsNegative() {
		return nil
	}

	stock := decimal.Zero
	if s := get(2); s != "" {
		stock, err = decimal.NewFromString(s)
		if err != nil || stock.IsNegative() {
			return nil
		}
	}

	return &domain.InventoryItem{
		Name:  name,
		Price: price.IntPart(),
		Stock: int(stock.IntPart()),
	}
}

func (p *ExcelProcessor) failJob(ctx context.Context, payload ExcelJobPayload, reason string) {
	p.removeTempFile(payload.FilePath)
	p.updateStatus(ctx, payload.JobID, func(st *ImportStatus) {
		st.Status = "failed"
		st.CompletedAt = time.Now().UTC()
		st.Error = reason
	})
}

func (p *ExcelProcessor) updateStatus(ctx context.Context, jobID string, mutate func(*ImportStatus)) {
	key := redis_a.BuildKey(redis_a.PrefixImport, jobID)

	status := ImportStatus{JobID: jobID}
	if err := p.cache.Get(ctx, key, &status); err != nil && !errors.Is(err, redis_a.ErrCacheMiss) {
		p.logger.WarnContext(ctx, "failed to read import status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
	}
	mutate(&status)

	if err := p.cache.SetWithTTL(ctx, key, status, importStatusTTL); err != nil {
		p.logger.WarnContext(ctx, "failed to update import status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
	}
}

func (p *ExcelProcessor) removeTempFile(path string) {
	if strings.HasPrefix(path, os.TempDir()) || strings.HasPrefix(path, "/tmp/") {
		os.Remove(path)
	}
}
