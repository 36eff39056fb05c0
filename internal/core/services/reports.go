// internal/core/services/reports.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

var summaryKey = redis_a.BuildKey(redis_a.PrefixReport, "summary")

// ReportService aggregates the sales history into dashboard figures
type ReportService struct {
	sales       ports.Collection[domain.Sale]
	customers   ports.Collection[domain.Customer]
	cache       ports.CacheRepository
	reportTTL   time.Duration
	bestSellers int
	logger      *slog.Logger
}

var _ ports.ReportService = (*ReportService)(nil)

// NewReportService creates a new report service. bestSellers caps the length
// of the best-selling ranking in the summary.
func NewReportService(store ports.RecordStore, cache ports.CacheRepository, reportTTL time.Duration, bestSellers int, logger *slog.Logger) *ReportService {
	return &ReportService{
		sales:       ports.NewCollection[domain.Sale](store, ports.CollectionSales),
		customers:   ports.NewCollection[domain.Customer](store, ports.CollectionCustomers),
		cache:       cache,
		reportTTL:   reportTTL,
		bestSellers: bestSellers,
		logger:      logger.With(slog.String("service", "reports")),
	}
}

// Summary returns the dashboard aggregate, cached until the next sale
// mutation invalidates it
func (s *ReportService) Summary(ctx context.Context) (*domain.ReportSummary, error) {
	var summary domain.ReportSummary
	err := s.cache.GetOrSet(ctx, summaryKey, &summary, func() (interface{}, error) {
		return s.compute(ctx)
	}, s.reportTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to build report summary: %w", err)
	}
	return &summary, nil
}

// Refresh recomputes the summary and overwrites the cached copy
func (s *ReportService) Refresh(ctx context.Context) error {
	summary, err := s.compute(ctx)
	if err != nil {
		return err
	}

	if err := s.cache.SetWithTTL(ctx, summaryKey, summary, s.reportTTL); err != nil {
		return fmt.Errorf("failed to cache report summary: %w", err)
	}

	s.logger.InfoContext(ctx, "refreshed report summary",
		slog.Int("sales", summary.SaleCount),
		slog.Int64("revenue", summary.TotalRevenue))

	return nil
}

func (s *ReportService) compute(ctx context.Context) (*domain.ReportSummary, error) {
	sales, err := s.sales.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales: %w", err)
	}

	summary := &domain.ReportSummary{
		BestSelling: []domain.BestSeller{},
		Customers:   []domain.CustomerStat{},
		GeneratedAt: time.Now().UTC(),
	}

	// Unit counts keyed by the name snapshotted on the sale line; two items
	// sharing a name aggregate together.
	unitsByName := make(map[string]int)
	nameOrder := make(map[string]int)

	custStats := make(map[int64]*domain.CustomerStat)
	custOrder := make(map[int64]int)

	for _, sale := range sales {
		summary.TotalRevenue += sale.Total
		summary.SaleCount++

		for _, line := range sale.Items {
			if _, seen := unitsByName[line.Name]; !seen {
				nameOrder[line.Name] = len(nameOrder)
			}
			unitsByName[line.Name] += line.Quantity
		}

		// Walk-in sales carry no customer and stay out of the per-customer
		// breakdown.
		if sale.CustomerID == 0 {
			continue
		}

		stat, ok := custStats[sale.CustomerID]
		if !ok {
			stat = &domain.CustomerStat{CustomerID: sale.CustomerID}
			custStats[sale.CustomerID] = stat
			custOrder[sale.CustomerID] = len(custOrder)
		}
		stat.Revenue += sale.Total
		stat.Sales++
		for _, line := range sale.Items {
			stat.Units += line.Quantity
		}
	}

	if summary.SaleCount > 0 {
		summary.AverageSale = decimal.NewFromInt(summary.TotalRevenue).
			Div(decimal.NewFromInt(int64(summary.SaleCount))).
			Round(2)
	}

	best := make([]domain.BestSeller, 0, len(unitsByName))
	for name, units := range unitsByName {
		best = append(best, domain.BestSeller{Name: name, Units: units})
	}
	// Ties keep first-sold-first order so the ranking is stable across runs
	sort.SliceStable(best, func(i, j int) bool {
		if best[i].Units != best[j].Units {
			return best[i].Units > best[j].Units
		}
		return nameOrder[best[i].Name] < nameOrder[best[j].Name]
	})
	if len(best) > s.bestSellers {
		best = best[:s.bestSellers]
	}
	summary.BestSelling = best

	if len(custStats) > 0 {
		customers, err := s.customers.All(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load customers: %w", err)
		}
		namesByID := make(map[int64]string, len(customers))
		for _, c := range customers {
			namesByID[c.ID] = c.Name
		}

		stats := make([]domain.CustomerStat, 0, len(custStats))
		for id, stat := range custStats {
			if name, ok := namesByID[id]; ok {
				stat.Name = name
			} else {
				stat.Name = fmt.Sprintf("customer %d", id)
			}
			stats = append(stats, *stat)
		}
		sort.SliceStable(stats, func(i, j int) bool {
			if stats[i].Revenue != stats[j].Revenue {
				return stats[i].Revenue > stats[j].Revenue
			}
			return custOrder[stats[i].CustomerID] < custOrder[stats[j].CustomerID]
		})
		summary.Customers = stats
	}

	return summary, nil
}
