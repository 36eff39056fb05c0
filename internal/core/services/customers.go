// internal/core/services/customers.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// CustomerService handles the customer directory
type CustomerService struct {
	customers ports.Collection[domain.Customer]
	logger    *slog.Logger
}

var _ ports.CustomerService = (*CustomerService)(nil)

// NewCustomerService creates a new customer service
func NewCustomerService(store ports.RecordStore, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		customers: ports.NewCollection[domain.Customer](store, ports.CollectionCustomers),
		logger:    logger.With(slog.String("service", "customers")),
	}
}

// List returns all customers in store order
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	customers, err := s.customers.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	return customers, nil
}

// Upsert saves a customer, creating it when the id is zero
func (s *CustomerService) Upsert(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := customer.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	customer.UpdatedAt = now

	if customer.ID == 0 {
		customer.CreatedAt = now
		id, err := s.customers.Create(ctx, customer)
		if err != nil {
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}
		customer.ID = id
	} else {
		if customer.CreatedAt.IsZero() {
			customer.CreatedAt = now
		}
		if err := s.customers.Update(ctx, customer.ID, customer); err != nil {
			return nil, fmt.Errorf("failed to update customer %d: %w", customer.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "saved customer",
		slog.Int64("id", customer.ID),
		slog.String("name", customer.Name))

	return customer, nil
}

// Remove deletes a customer. Past sales keep their recorded customer id;
// they are not rewritten.
func (s *CustomerService) Remove(ctx context.Context, id int64) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "deleted customer", slog.Int64("id", id))
	return nil
}
