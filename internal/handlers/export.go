// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// ExportHandler handles export operations
type ExportHandler struct {
	inventory ports.InventoryService
	sales     ports.SalesService
	logger    *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(inventory ports.InventoryService, sales ports.SalesService, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		inventory: inventory,
		sales:     sales,
		logger:    logger.With(slog.String("handler", "export")),
	}
}

// ExportInventoryCSV handles GET /api/v1/export/inventory.csv
//
// The format is the legacy register export: values joined with plain commas
// and no quoting, so a comma inside an item name breaks the column layout.
// Downstream spreadsheets already expect exactly this shape.
func (h *ExportHandler) ExportInventoryCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.inventory.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load inventory for export", slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	var b strings.Builder
	b.WriteString("Nama,Harga,Stok\n")
	for _, item := range items {
		b.WriteString(item.Name)
		b.WriteString(",")
		b.WriteString(strconv.FormatInt(item.Price, 10))
		b.WriteString(",")
		b.WriteString(strconv.Itoa(item.Stock))
		b.WriteString("\n")
	}

	h.writeAttachment(w, "text/csv", csvFilename("inventory"), []byte(b.String()))

	h.logger.InfoContext(ctx, "inventory CSV export completed",
		slog.Int("rows", len(items)))
}

// ExportSalesCSV handles GET /api/v1/export/sales.csv
//
// Optional since/until query params narrow the export window. Both accept
// RFC 3339 timestamps or plain dates; since is inclusive and until exclusive,
// except that a date-only until covers that whole day.
func (h *ExportHandler) ExportSalesCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := saleRangeParams(r)
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, err.Error())
		return
	}

	sales, err := h.sales.ListRange(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load sales for export", slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	var b strings.Builder
	b.WriteString("Tanggal,Total,Items\n")
	for _, sale := range sales {
		b.WriteString(sale.Date.Format("2006-01-02 15:04:05"))
		b.WriteString(",")
		b.WriteString(strconv.FormatInt(sale.Total, 10))
		b.WriteString(",")
		b.WriteString(formatSaleItems(sale.Items))
		b.WriteString("\n")
	}

	h.writeAttachment(w, "text/csv", csvFilename("sales"), []byte(b.String()))

	h.logger.InfoContext(ctx, "sales CSV export completed",
		slog.Int("rows", len(sales)))
}

// ExportInventoryExcel handles GET /api/v1/export/inventory.xlsx
func (h *ExportHandler) ExportInventoryExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.inventory.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load inventory for export", slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	data, err := h.generateExcelFile(items)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file", slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("inventory_export_%s.xlsx", time.Now().Format("20060102_150405"))
	h.writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", filename, data)

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("rows", len(items)),
		slog.String("filename", filename))
}

// generateExcelFile creates an Excel file in memory from the catalog
func (h *ExportHandler) generateExcelFile(items []domain.InventoryItem) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Inventory")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range []string{"ID", "Nama", "Harga", "Stok"} {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, item := range items {
		row := sheet.AddRow()
		row.AddCell().Value = strconv.FormatInt(item.ID, 10)
		row.AddCell().Value = item.Name
		row.AddCell().Value = strconv.FormatInt(item.Price, 10)
		row.AddCell().Value = strconv.Itoa(item.Stock)
	}

	for i := 1; i <= 4; i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *ExportHandler) writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export response", slog.String("error", err.Error()))
	}
}

// formatSaleItems renders sale lines as "name(qty); name(qty)"
func formatSaleItems(lines []domain.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s(%d)", line.Name, line.Quantity))
	}
	return strings.Join(parts, "; ")
}

func csvFilename(kind string) string {
	return fmt.Sprintf("%s_export_%s.csv", kind, time.Now().Format("20060102_150405"))
}

// saleRangeParams reads the since/until query params into store list params.
func saleRangeParams(r *http.Request) (ports.ListParams, error) {
	var params ports.ListParams

	if raw := r.URL.Query().Get("since"); raw != "" {
		since, _, err := parseExportTime(raw)
		if err != nil {
			return params, fmt.Errorf("invalid since parameter: %q", raw)
		}
		params.Since = &since
	}

	if raw := r.URL.Query().Get("until"); raw != "" {
		until, dateOnly, err := parseExportTime(raw)
		if err != nil {
			return params, fmt.Errorf("invalid until parameter: %q", raw)
		}
		if dateOnly {
			until = until.AddDate(0, 0, 1)
		}
		params.Until = &until
	}

	return params, nil
}

// parseExportTime accepts an RFC 3339 timestamp or a bare date. The second
// return reports the date-only form so until can cover the full day.
func parseExportTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t.UTC(), false, err
}
