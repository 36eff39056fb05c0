// internal/core/ports/services.go
package ports

import (
	"context"

	"github.com/bengkelpos/pos-be/internal/core/domain"
)

// InventoryService defines the application service port for inventory.
// This interface is implemented by the application service.
type InventoryService interface {
	List(ctx context.Context) ([]domain.InventoryItem, error)
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	Upsert(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error)
	Remove(ctx context.Context, id int64) error
	LowStock(ctx context.Context, threshold int) ([]domain.InventoryItem, error)
	Search(ctx context.Context, query string) ([]domain.InventoryItem, error)
	Lookup(ctx context.Context, code string) (*domain.InventoryItem, error)
	Refresh(ctx context.Context) error
}

// CustomerService defines the application service port for the customer
// directory.
type CustomerService interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Upsert(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	Remove(ctx context.Context, id int64) error
}

// CartService defines the in-progress sale. A cart is session-scoped state;
// Commit turns it into a persisted sale and adjusts stock atomically.
type CartService interface {
	Lines() []domain.CartLine
	AddLine(ctx context.Context, itemID int64, quantity int) error
	RemoveLine(index int) error
	Total() int64
	Clear()
	Commit(ctx context.Context, customerID int64) (*domain.Sale, error)
}

// SalesService exposes the persisted sales history.
type SalesService interface {
	List(ctx context.Context) ([]domain.Sale, error)
	ListRange(ctx context.Context, params ListParams) ([]domain.Sale, error)
	Delete(ctx context.Context, id int64) error
}

// ReportService aggregates sales into the dashboard figures.
type ReportService interface {
	Summary(ctx context.Context) (*domain.ReportSummary, error)
	Refresh(ctx context.Context) error
}
