// internal/core/services/sales.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// SalesService exposes the persisted sales history
type SalesService struct {
	sales  ports.Collection[domain.Sale]
	cache  ports.CacheRepository
	logger *slog.Logger
}

var _ ports.SalesService = (*SalesService)(nil)

// NewSalesService creates a new sales service
func NewSalesService(store ports.RecordStore, cache ports.CacheRepository, logger *slog.Logger) *SalesService {
	return &SalesService{
		sales:  ports.NewCollection[domain.Sale](store, ports.CollectionSales),
		cache:  cache,
		logger: logger.With(slog.String("service", "sales")),
	}
}

// List returns all sales in the order they were recorded
func (s *SalesService) List(ctx context.Context) ([]domain.Sale, error) {
	sales, err := s.sales.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, nil
}

// ListRange returns the sales recorded inside the given window. Since is
// inclusive, Until exclusive; a nil bound leaves that side open.
func (s *SalesService) ListRange(ctx context.Context, params ports.ListParams) ([]domain.Sale, error) {
	sales, err := s.sales.Select(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, nil
}

// Delete removes a sale from the history. Stock is not restored; the sale
// simply disappears from reports. Deleting a missing id succeeds.
func (s *SalesService) Delete(ctx context.Context, id int64) error {
	if err := s.sales.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete sale %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "deleted sale", slog.Int64("id", id))

	if err := s.cache.DeletePattern(ctx, string(redis_a.PrefixReport)+":*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate report cache", "err", err)
	}

	return nil
}
