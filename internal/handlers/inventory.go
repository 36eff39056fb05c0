// internal/handlers/inventory.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// InventoryHandler handles inventory-related HTTP requests
type InventoryHandler struct {
	service   ports.InventoryService
	threshold int
	logger    *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, threshold int, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:   service,
		threshold: threshold,
		logger:    logger.With(slog.String("handler", "inventory")),
	}
}

// ListInventory handles GET /api/v1/inventory. A search query narrows the
// result to items whose name contains it.
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		items []domain.InventoryItem
		err   error
	)
	if query := r.URL.Query().Get("search"); query != "" {
		items, err = h.service.Search(ctx, query)
	} else {
		items, err = h.service.List(ctx)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list inventory",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list inventory")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, items)
}

// GetInventory handles GET /api/v1/inventory/{id}
func (h *InventoryHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid inventory ID")
		return
	}

	item, err := h.service.GetByID(ctx, id)
	if err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "failed to get inventory item",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to retrieve inventory item")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, item)
}

// SaveInventory handles POST /api/v1/inventory. A request without an id
// creates a new item; one with an id overwrites that record.
func (h *InventoryHandler) SaveInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.ToDomain()
	created := item.ID == 0

	saved, err := h.service.Upsert(ctx, item)
	if err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "failed to save inventory item",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to save inventory item")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(h.logger, w, status, saved)
}

// UpdateInventory handles PUT /api/v1/inventory/{id}
func (h *InventoryHandler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid inventory ID")
		return
	}

	var req SaveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item := req.ToDomain()
	item.ID = id

	saved, err := h.service.Upsert(ctx, item)
	if err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "failed to update inventory item",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to update inventory item")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, saved)
}

// DeleteInventory handles DELETE /api/v1/inventory/{id}
func (h *InventoryHandler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid inventory ID")
		return
	}

	if err := h.service.Remove(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete inventory item",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to delete inventory item")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message": "Inventory item deleted successfully",
		"id":      id,
	})
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	threshold := h.threshold
	if t := r.URL.Query().Get("threshold"); t != "" {
		v, err := strconv.Atoi(t)
		if err != nil || v < 0 {
			respondError(h.logger, w, http.StatusBadRequest, "Invalid threshold")
			return
		}
		threshold = v
	}

	items, err := h.service.LowStock(ctx, threshold)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list low stock items",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list low stock items")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"threshold": threshold,
		"items":     items,
	})
}

// LookupInventory handles GET /api/v1/inventory/lookup. The code can be a
// record id from a barcode or a name fragment typed at the register.
func (h *InventoryHandler) LookupInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(h.logger, w, http.StatusBadRequest, "code query parameter is required")
		return
	}

	item, err := h.service.Lookup(ctx, code)
	if err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "lookup failed",
			slog.String("code", code),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Lookup failed")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, item)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// Request/Response DTOs

// SaveItemRequest represents the request body for saving an inventory item
type SaveItemRequest struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// ToDomain converts the request to a domain model
func (r *SaveItemRequest) ToDomain() *domain.InventoryItem {
	return &domain.InventoryItem{
		ID:    r.ID,
		Name:  r.Name,
		Price: r.Price,
		Stock: r.Stock,
	}
}
