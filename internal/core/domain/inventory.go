// internal/core/domain/inventory.go
package domain

import (
	"strconv"
	"strings"
	"time"
)

// DefaultLowStockThreshold is the stock level at or below which an item
// is flagged for restocking.
const DefaultLowStockThreshold = 5

// InventoryItem is a single motorcycle part carried by the shop.
// Price is stored in the smallest currency unit (whole rupiah).
type InventoryItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Validate performs domain validation on the inventory item.
func (i *InventoryItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if i.Price < 0 {
		return &ValidationError{Field: "price", Reason: "cannot be negative"}
	}
	if i.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "cannot be negative"}
	}
	return nil
}

// OutOfStock reports whether the item has no stock left. Out of stock is a
// distinct state from low stock and is never included in restock warnings.
func (i *InventoryItem) OutOfStock() bool {
	return i.Stock == 0
}

// LowStock reports whether the item needs restocking: some stock remains
// but no more than threshold units.
func (i *InventoryItem) LowStock(threshold int) bool {
	return i.Stock > 0 && i.Stock <= threshold
}

// MatchesCode reports whether a scanned or typed code identifies this item,
// either by exact id or by a case-insensitive name fragment.
func (i *InventoryItem) MatchesCode(code string) bool {
	if code == "" {
		return false
	}
	if id, err := strconv.ParseInt(code, 10, 64); err == nil && id == i.ID {
		return true
	}
	return strings.Contains(strings.ToLower(i.Name), strings.ToLower(code))
}
