// internal/core/services/inventory.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	redis_a "github.com/bengkelpos/pos-be/internal/adapters/redis_adapter"
	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// snapshotKey caches the full inventory collection. Every mutation refreshes
// it so reads after a sale see the decremented stock immediately.
var snapshotKey = redis_a.BuildKey(redis_a.PrefixSnapshot, ports.CollectionInventory)

// InventoryService handles the parts catalog and its stock levels
type InventoryService struct {
	items       ports.Collection[domain.InventoryItem]
	cache       ports.CacheRepository
	snapshotTTL time.Duration
	logger      *slog.Logger
}

// Statically assert that *InventoryService implements the InventoryService interface.
var _ ports.InventoryService = (*InventoryService)(nil)

// NewInventoryService creates a new inventory service
func NewInventoryService(store ports.RecordStore, cache ports.CacheRepository, snapshotTTL time.Duration, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		items:       ports.NewCollection[domain.InventoryItem](store, ports.CollectionInventory),
		cache:       cache,
		snapshotTTL: snapshotTTL,
		logger:      logger.With(slog.String("service", "inventory")),
	}
}

// List returns the full catalog, served from the snapshot cache when warm
func (s *InventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := s.cache.GetOrSet(ctx, snapshotKey, &items, func() (interface{}, error) {
		loaded, err := s.items.All(ctx)
		if err != nil {
			return nil, err
		}
		if loaded == nil {
			loaded = []domain.InventoryItem{}
		}
		return loaded, nil
	}, s.snapshotTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, nil
}

// GetByID returns a single item or domain.ErrNotFound
func (s *InventoryService) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item %d: %w", id, err)
	}
	return item, nil
}

// Upsert saves an item. A zero id creates a new record with a fresh id; a
// non-zero id overwrites the existing record, inserting it if absent.
func (s *InventoryService) Upsert(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	item.UpdatedAt = now

	if item.ID == 0 {
		item.CreatedAt = now
		id, err := s.items.Create(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("failed to create inventory item: %w", err)
		}
		item.ID = id
	} else {
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if err := s.items.Update(ctx, item.ID, item); err != nil {
			return nil, fmt.Errorf("failed to update inventory item %d: %w", item.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "saved inventory item",
		slog.Int64("id", item.ID),
		slog.String("name", item.Name),
		slog.Int("stock", item.Stock))

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh inventory snapshot", "err", err)
	}

	return item, nil
}

// Remove deletes an item. Removing an id that does not exist succeeds.
func (s *InventoryService) Remove(ctx context.Context, id int64) error {
	if err := s.items.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete inventory item %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "deleted inventory item", slog.Int64("id", id))

	if err := s.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to refresh inventory snapshot", "err", err)
	}

	return nil
}

// LowStock returns items with stock above zero but at or below threshold.
// Items that are fully out of stock are excluded; those surface separately.
func (s *InventoryService) LowStock(ctx context.Context, threshold int) ([]domain.InventoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]domain.InventoryItem, 0)
	for _, item := range items {
		if item.LowStock(threshold) {
			low = append(low, item)
		}
	}
	return low, nil
}

// Search returns items whose name contains the query, case-insensitively.
// An empty query returns the full catalog.
func (s *InventoryService) Search(ctx context.Context, query string) ([]domain.InventoryItem, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}

	matched := make([]domain.InventoryItem, 0)
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Lookup resolves a scanned or typed code to an item: an exact id match
// wins, otherwise the first item whose name contains the code. Returns
// domain.ErrNotFound when nothing matches.
func (s *InventoryService) Lookup(ctx context.Context, code string) (*domain.InventoryItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrNotFound
	}

	if id, err := strconv.ParseInt(code, 10, 64); err == nil {
		item, err := s.items.Get(ctx, id)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up item %d: %w", id, err)
		}
	}

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].MatchesCode(code) {
			return &items[i], nil
		}
	}

	return nil, domain.ErrNotFound
}

// Refresh reloads the snapshot cache from the store
func (s *InventoryService) Refresh(ctx context.Context) error {
	items, err := s.items.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}

	if err := s.cache.SetWithTTL(ctx, snapshotKey, items, s.snapshotTTL); err != nil {
		return fmt.Errorf("failed to cache inventory snapshot: %w", err)
	}
	return nil
}
