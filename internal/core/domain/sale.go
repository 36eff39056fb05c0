// internal/core/domain/sale.go
package domain

import "time"

// CartLine is a transient line in the sale-in-progress. Price is a snapshot
// taken when the line was added and is not re-read at commit time.
type CartLine struct {
	ItemID   int64  `json:"item_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Subtotal returns price times quantity for the line.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Sale is a committed sale. It is immutable once recorded; it can only be
// deleted wholesale. CustomerID is zero for walk-in sales.
type Sale struct {
	ID         int64      `json:"id"`
	CustomerID int64      `json:"customer_id,omitempty"`
	Items      []CartLine `json:"items"`
	Total      int64      `json:"total"`
	Date       time.Time  `json:"date"`
}

// CartTotal sums price times quantity over the given lines using integer
// arithmetic only.
func CartTotal(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
