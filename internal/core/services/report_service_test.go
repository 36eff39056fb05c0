// internal/core/services/report_service_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
	"github.com/bengkelpos/pos-be/internal/core/services"
	"github.com/bengkelpos/pos-be/test/helpers"
)

type reportFixture struct {
	store     *helpers.MemStore
	reports   *services.ReportService
	sales     ports.Collection[domain.Sale]
	customers ports.Collection[domain.Customer]
}

func newReportFixture(t *testing.T) *reportFixture {
	return newReportFixtureWithLimit(t, 5)
}

func newReportFixtureWithLimit(t *testing.T, bestSellers int) *reportFixture {
	t.Helper()

	store := helpers.NewMemStore()
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger())

	return &reportFixture{
		store:     store,
		reports:   services.NewReportService(store, cache, 10*time.Minute, bestSellers, helpers.TestLogger()),
		sales:     ports.NewCollection[domain.Sale](store, ports.CollectionSales),
		customers: ports.NewCollection[domain.Customer](store, ports.CollectionCustomers),
	}
}

func (f *reportFixture) recordSale(t *testing.T, customerID int64, lines ...domain.CartLine) {
	t.Helper()

	sale := &domain.Sale{
		CustomerID: customerID,
		Items:      lines,
		Total:      domain.CartTotal(lines),
		Date:       time.Now().UTC(),
	}
	_, err := f.sales.Create(context.Background(), sale)
	require.NoError(t, err)
}

func TestReportService_Summary_Empty(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.reports.Summary(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.TotalRevenue)
	assert.Zero(t, summary.SaleCount)
	assert.True(t, summary.AverageSale.IsZero())
	assert.Empty(t, summary.BestSelling)
	assert.Empty(t, summary.Customers)
}

func TestReportService_Summary_Totals(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 2})
	f.recordSale(t, 0, domain.CartLine{ItemID: 2, Name: "Oli Mesin", Price: 55000, Quantity: 1})
	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 1})

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(130000), summary.TotalRevenue)
	assert.Equal(t, 3, summary.SaleCount)
	// 130000 / 3, rounded to two decimal places
	assert.True(t, summary.AverageSale.Equal(decimal.RequireFromString("43333.33")),
		"got %s", summary.AverageSale)
}

func TestReportService_Summary_BestSelling(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	// Six distinct parts; ranking keeps only the top five by units sold
	f.recordSale(t, 0,
		domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 5},
		domain.CartLine{ItemID: 2, Name: "Oli Mesin", Price: 55000, Quantity: 4},
	)
	f.recordSale(t, 0,
		domain.CartLine{ItemID: 3, Name: "Kampas Rem", Price: 45000, Quantity: 3},
		domain.CartLine{ItemID: 4, Name: "V-Belt", Price: 165000, Quantity: 3},
		domain.CartLine{ItemID: 5, Name: "Ban Dalam", Price: 32000, Quantity: 2},
	)
	f.recordSale(t, 0,
		domain.CartLine{ItemID: 6, Name: "Kabel Gas", Price: 28000, Quantity: 1},
	)

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, summary.BestSelling, 5)
	assert.Equal(t, domain.BestSeller{Name: "Busi NGK", Units: 5}, summary.BestSelling[0])
	assert.Equal(t, domain.BestSeller{Name: "Oli Mesin", Units: 4}, summary.BestSelling[1])
	// Equal units keep first-sold-first order
	assert.Equal(t, domain.BestSeller{Name: "Kampas Rem", Units: 3}, summary.BestSelling[2])
	assert.Equal(t, domain.BestSeller{Name: "V-Belt", Units: 3}, summary.BestSelling[3])
	assert.Equal(t, domain.BestSeller{Name: "Ban Dalam", Units: 2}, summary.BestSelling[4])
}

func TestReportService_Summary_BestSellingLimitIsConfigurable(t *testing.T) {
	ctx := context.Background()
	f := newReportFixtureWithLimit(t, 2)

	f.recordSale(t, 0,
		domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 5},
		domain.CartLine{ItemID: 2, Name: "Oli Mesin", Price: 55000, Quantity: 4},
		domain.CartLine{ItemID: 3, Name: "Kampas Rem", Price: 45000, Quantity: 3},
	)

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, summary.BestSelling, 2)
	assert.Equal(t, "Busi NGK", summary.BestSelling[0].Name)
	assert.Equal(t, "Oli Mesin", summary.BestSelling[1].Name)
}

func TestReportService_Summary_AggregatesByLineName(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	// The ranking keys on the name snapshotted into the sale line, so the
	// same part sold across many sales accumulates into one entry.
	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 2})
	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 27000, Quantity: 3})

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, summary.BestSelling, 1)
	assert.Equal(t, 5, summary.BestSelling[0].Units)
}

func TestReportService_Summary_CustomerBreakdown(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	budiID, err := f.customers.Create(ctx, helpers.CreateTestCustomer())
	require.NoError(t, err)
	sariID, err := f.customers.Create(ctx, helpers.CreateTestCustomer(func(c *domain.Customer) {
		c.Name = "Bu Sari"
	}))
	require.NoError(t, err)

	f.recordSale(t, budiID, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 2})
	f.recordSale(t, sariID, domain.CartLine{ItemID: 2, Name: "V-Belt", Price: 165000, Quantity: 1})
	f.recordSale(t, budiID, domain.CartLine{ItemID: 2, Name: "V-Belt", Price: 165000, Quantity: 1})
	// Walk-in sale stays out of the per-customer view
	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 4})

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, summary.Customers, 2)

	assert.Equal(t, budiID, summary.Customers[0].CustomerID)
	assert.Equal(t, "Pak Budi", summary.Customers[0].Name)
	assert.Equal(t, int64(215000), summary.Customers[0].Revenue)
	assert.Equal(t, 3, summary.Customers[0].Units)
	assert.Equal(t, 2, summary.Customers[0].Sales)

	assert.Equal(t, sariID, summary.Customers[1].CustomerID)
	assert.Equal(t, int64(165000), summary.Customers[1].Revenue)
}

func TestReportService_Summary_UnknownCustomerGetsPlaceholder(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	// The customer record was deleted after the sale
	f.recordSale(t, 9, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 1})

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)

	require.Len(t, summary.Customers, 1)
	assert.Equal(t, "customer 9", summary.Customers[0].Name)
}

func TestReportService_Refresh_WarmsCache(t *testing.T) {
	ctx := context.Background()
	f := newReportFixture(t)

	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 1})

	summary, err := f.reports.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SaleCount)

	// A new sale is invisible until the cache is refreshed
	f.recordSale(t, 0, domain.CartLine{ItemID: 1, Name: "Busi NGK", Price: 25000, Quantity: 1})

	summary, err = f.reports.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SaleCount)

	require.NoError(t, f.reports.Refresh(ctx))

	summary, err = f.reports.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SaleCount)
}
