// internal/core/domain/customer.go
package domain

import (
	"strings"
	"time"
)

// Customer is a shop customer. Phone is optional.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Validate performs domain validation on the customer.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}
