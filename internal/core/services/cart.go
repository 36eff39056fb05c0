// internal/core/services/cart.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// CartService holds the in-progress sale for the register. The cart itself
// is in-memory state guarded by a mutex; only Commit touches the store.
type CartService struct {
	store     ports.RecordStore
	cache     ports.CacheRepository
	inventory ports.InventoryService
	logger    *slog.Logger

	mu    sync.Mutex
	lines []domain.CartLine
}

var _ ports.CartService = (*CartService)(nil)

// NewCartService creates a new cart service
func NewCartService(store ports.RecordStore, cache ports.CacheRepository, inventory ports.InventoryService, logger *slog.Logger) *CartService {
	return &CartService{
		store:     store,
		cache:     cache,
		inventory: inventory,
		logger:    logger.With(slog.String("service", "cart")),
	}
}

// Lines returns a copy of the current cart lines
func (s *CartService) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// AddLine puts quantity units of an item into the cart. A line for the same
// item is merged by summing quantities. The price is snapshotted from the
// item at add time; a later price change does not affect lines already in
// the cart. Quantity is checked against live stock only, not against what
// the cart already holds; the commit-time guard catches the difference.
func (s *CartService) AddLine(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	item, err := s.inventory.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if quantity > item.Stock {
		return &domain.InsufficientStockError{
			ItemID:    item.ID,
			Name:      item.Name,
			Requested: quantity,
			Available: item.Stock,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ItemID == itemID {
			s.lines[i].Quantity += quantity
			s.logger.InfoContext(ctx, "merged cart line",
				slog.Int64("item_id", itemID),
				slog.Int("quantity", s.lines[i].Quantity))
			return nil
		}
	}

	s.lines = append(s.lines, domain.CartLine{
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
	})

	s.logger.InfoContext(ctx, "added cart line",
		slog.Int64("item_id", itemID),
		slog.Int("quantity", quantity))

	return nil
}

// RemoveLine drops the line at the given position in the cart view
func (s *CartService) RemoveLine(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return domain.ErrLineIndex
	}

	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// Total returns the sum of line subtotals
func (s *CartService) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CartTotal(s.lines)
}

// Clear empties the cart without touching the store
func (s *CartService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
}

// Commit turns the cart into a persisted sale. The sale record and every
// stock decrement happen in one transaction: a stock shortage on any line
// rolls the whole sale back and the cart is left untouched. A customerID of
// zero records a walk-in sale. On success the cart is cleared, the inventory
// snapshot refreshed and cached reports invalidated.
func (s *CartService) Commit(ctx context.Context, customerID int64) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	items := make([]domain.CartLine, len(s.lines))
	copy(items, s.lines)

	sale := &domain.Sale{
		CustomerID: customerID,
		Items:      items,
		Total:      domain.CartTotal(items),
		Date:       time.Now().UTC(),
	}

	err := s.store.RunAtomic(ctx, func(ops ports.RecordOps) error {
		sales := ports.NewCollection[domain.Sale](ops, ports.CollectionSales)
		inventory := ports.NewCollection[domain.InventoryItem](ops, ports.CollectionInventory)

		id, err := sales.Create(ctx, sale)
		if err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		sale.ID = id

		for _, line := range items {
			item, err := inventory.Get(ctx, line.ItemID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// The item was removed from the catalog after it went
					// into the cart. The sale line stands as priced.
					s.logger.WarnContext(ctx, "sold item missing from inventory",
						slog.Int64("item_id", line.ItemID),
						slog.String("name", line.Name))
					continue
				}
				return err
			}

			if item.Stock < line.Quantity {
				return &domain.InsufficientStockError{
					ItemID:    item.ID,
					Name:      item.Name,
					Requested: line.Quantity,
					Available: item.Stock,
				}
			}

			item.Stock -= line.Quantity
			item.UpdatedAt = sale.Date
			if err := inventory.Update(ctx, item.ID, item); err != nil {
				return fmt.Errorf("failed to decrement stock for item %d: %w", item.ID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lines = nil

	s.logger.InfoContext(ctx, "completed sale",
		slog.Int64("sale_id", sale.ID),
		slog.Int64("customer_id", customerID),
		slog.Int64("total", sale.Total),
		slog.Int("lines", len(items)))

	if err := s.inventory.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh inventory snapshot", "err", err)
	}
	if err := s.cache.DeletePattern(ctx, string(redis_a.PrefixReport)+":*"); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate report cache", "err", err)
	}

	return sale, nil
}
