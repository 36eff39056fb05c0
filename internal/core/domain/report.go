// internal/core/domain/report.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BestSeller is one line of the best-selling ranking, keyed by the item name
// captured on the sale lines.
type BestSeller struct {
	Name  string `json:"name"`
	Units int    `json:"units"`
}

// CustomerStat aggregates one customer's purchase history. Walk-in sales
// (no customer attached) are not counted here.
type CustomerStat struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
	Revenue    int64  `json:"revenue"`
	Units      int    `json:"units"`
	Sales      int    `json:"sales"`
}

// ReportSummary is the full dashboard aggregate computed from the sales
// history.
type ReportSummary struct {
	TotalRevenue int64           `json:"total_revenue"`
	SaleCount    int             `json:"sale_count"`
	AverageSale  decimal.Decimal `json:"average_sale"`
	BestSelling  []BestSeller    `json:"best_selling"`
	Customers    []CustomerStat  `json:"customers"`
	GeneratedAt  time.Time       `json:"generated_at"`
}
