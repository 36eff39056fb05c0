// internal/handlers/customers.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// CustomerHandler handles customer directory HTTP requests
type CustomerHandler struct {
	service ports.CustomerService
	logger  *slog.Logger
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(service ports.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "customers")),
	}
}

// ListCustomers handles GET /api/v1/customers
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customers, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list customers",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list customers")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, customers)
}

// SaveCustomer handles POST /api/v1/customers
func (h *CustomerHandler) SaveCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer := req.ToDomain()
	created := customer.ID == 0

	saved, err := h.service.Upsert(ctx, customer)
	if err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "failed to save customer",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to save customer")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(h.logger, w, status, saved)
}

// UpdateCustomer handles PUT /api/v1/customers/{id}
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	var req SaveCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer := req.ToDomain()
	customer.ID = id

	saved, err := h.service.Upsert(ctx, customer)
	if err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "failed to update customer",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, saved)
}

// DeleteCustomer handles DELETE /api/v1/customers/{id}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	if err := h.service.Remove(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete customer",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message": "Customer deleted successfully",
		"id":      id,
	})
}

// SaveCustomerRequest represents the request body for saving a customer
type SaveCustomerRequest struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// ToDomain converts the request to a domain model
func (r *SaveCustomerRequest) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:    r.ID,
		Name:  r.Name,
		Phone: r.Phone,
	}
}
