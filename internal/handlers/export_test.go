// internal/handlers/export_test.go
package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
	"github.com/bengkelpos/pos-be/internal/core/services"
	"github.com/bengkelpos/pos-be/internal/handlers"
	"github.com/bengkelpos/pos-be/test/helpers"
)

type exportTestServer struct {
	handler   *handlers.ExportHandler
	inventory *services.InventoryService
	store     *helpers.MemStore
}

func newExportTestServer(t *testing.T) *exportTestServer {
	t.Helper()

	store := helpers.NewMemStore()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger())
	inventory := services.NewInventoryService(store, cache, time.Hour, helpers.TestLogger())
	sales := services.NewSalesService(store, cache, helpers.TestLogger())

	return &exportTestServer{
		handler:   handlers.NewExportHandler(inventory, sales, helpers.TestLogger()),
		inventory: inventory,
		store:     store,
	}
}

func TestExportHandler_ExportInventoryCSV(t *testing.T) {
	srv := newExportTestServer(t)
	ctx := context.Background()

	_, err := srv.inventory.Upsert(ctx, &domain.InventoryItem{Name: "Busi NGK", Price: 25000, Stock: 40})
	require.NoError(t, err)
	_, err = srv.inventory.Upsert(ctx, &domain.InventoryItem{Name: "Oli Mesin", Price: 55000, Stock: 24})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.handler.ExportInventoryCSV(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/inventory.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Nama,Harga,Stok", lines[0])
	assert.Equal(t, "Busi NGK,25000,40", lines[1])
	assert.Equal(t, "Oli Mesin,55000,24", lines[2])
}

func TestExportHandler_ExportInventoryCSV_NoQuoting(t *testing.T) {
	srv := newExportTestServer(t)

	// The legacy format does not quote values; a comma in the name is
	// emitted as-is.
	_, err := srv.inventory.Upsert(context.Background(), &domain.InventoryItem{
		Name:  "Ban Luar, Tubeless",
		Price: 185000,
		Stock: 9,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.handler.ExportInventoryCSV(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/inventory.csv", nil))

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Ban Luar, Tubeless,185000,9", lines[1])
}

func TestExportHandler_ExportSalesCSV(t *testing.T) {
	srv := newExportTestServer(t)
	ctx := context.Background()

	saleDate := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)
	salesColl := ports.NewCollection[domain.Sale](srv.store, ports.CollectionSales)
	_, err := salesColl.Create(ctx, &domain.Sale{
		Items: []domain.CartLine{
			{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 2},
			{ItemID: 2, Name: "Oli Mesin", Price: 55000, Quantity: 1},
		},
		Total: 105000,
		Date:  saleDate,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.handler.ExportSalesCSV(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Tanggal,Total,Items", lines[0])
	assert.Equal(t, "2026-08-29 14:30:00,105000,Busi NGK(2); Oli Mesin(1)", lines[1])
}

func TestExportHandler_ExportSalesCSV_DateRange(t *testing.T) {
	srv := newExportTestServer(t)
	ctx := context.Background()

	salesColl := ports.NewCollection[domain.Sale](srv.store, ports.CollectionSales)
	recordSale := func(name string, total int64, recorded time.Time) {
		id, err := salesColl.Create(ctx, &domain.Sale{
			Items: []domain.CartLine{{ItemID: 1, Name: name, Price: total, Quantity: 1}},
			Total: total,
			Date:  recorded,
		})
		require.NoError(t, err)
		srv.store.Backdate(ports.CollectionSales, id, recorded)
	}

	recordSale("Busi NGK", 25000, time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC))
	recordSale("Oli Mesin", 55000, time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	recordSale("Kampas Rem", 45000, time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC))

	export := func(query string) []string {
		rec := httptest.NewRecorder()
		srv.handler.ExportSalesCSV(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.csv"+query, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	}

	t.Run("since_is_inclusive", func(t *testing.T) {
		lines := export("?since=2026-08-20")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "Oli Mesin")
		assert.Contains(t, lines[2], "Kampas Rem")
	})

	t.Run("until_covers_the_whole_day", func(t *testing.T) {
		lines := export("?until=2026-08-20")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[1], "Busi NGK")
		assert.Contains(t, lines[2], "Oli Mesin")
	})

	t.Run("bounded_window", func(t *testing.T) {
		lines := export("?since=2026-08-15&until=2026-08-25")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[1], "Oli Mesin")
	})

	t.Run("rfc3339_until_is_exclusive", func(t *testing.T) {
		lines := export("?until=2026-08-20T09:00:00Z")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[1], "Busi NGK")
	})

	t.Run("bad_bound_is_rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.handler.ExportSalesCSV(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/sales.csv?since=yesterday", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportHandler_ExportInventoryExcel(t *testing.T) {
	srv := newExportTestServer(t)

	_, err := srv.inventory.Upsert(context.Background(), &domain.InventoryItem{
		Name:  "Kampas Rem",
		Price: 45000,
		Stock: 12,
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.handler.ExportInventoryExcel(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/inventory.xlsx", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
	// xlsx files are zip archives
	assert.Equal(t, "PK", rec.Body.String()[:2])
}
