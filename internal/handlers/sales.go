// internal/handlers/sales.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bengkelpos/pos-be/internal/core/domain"
	"github.com/bengkelpos/pos-be/internal/core/ports"
)

// SalesHandler handles the register cart and the sales history
type SalesHandler struct {
	cart   ports.CartService
	sales  ports.SalesService
	logger *slog.Logger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(cart ports.CartService, sales ports.SalesService, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{
		cart:   cart,
		sales:  sales,
		logger: logger.With(slog.String("handler", "sales")),
	}
}

// GetCart handles GET /api/v1/cart
func (h *SalesHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(h.logger, w, http.StatusOK, CartResponse{
		Lines: h.cart.Lines(),
		Total: h.cart.Total(),
	})
}

// AddCartLine handles POST /api/v1/cart/lines
func (h *SalesHandler) AddCartLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.cart.AddLine(ctx, req.ItemID, req.Quantity); err != nil {
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "failed to add cart line",
			slog.Int64("item_id", req.ItemID),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to add cart line")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, CartResponse{
		Lines: h.cart.Lines(),
		Total: h.cart.Total(),
	})
}

// RemoveCartLine handles DELETE /api/v1/cart/lines/{index}
func (h *SalesHandler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid line index")
		return
	}

	if err := h.cart.RemoveLine(index); err != nil {
		if errors.Is(err, domain.ErrLineIndex) {
			respondError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to remove cart line")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, CartResponse{
		Lines: h.cart.Lines(),
		Total: h.cart.Total(),
	})
}

// ClearCart handles DELETE /api/v1/cart
func (h *SalesHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondJSON(h.logger, w, http.StatusOK, CartResponse{
		Lines: h.cart.Lines(),
		Total: 0,
	})
}

// Checkout handles POST /api/v1/cart/checkout. The customer id is optional;
// zero or absent records a walk-in sale.
func (h *SalesHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CheckoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(h.logger, w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	sale, err := h.cart.Commit(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCart) {
			respondError(h.logger, w, http.StatusBadRequest, err.Error())
			return
		}
		if respondDomainError(h.logger, w, err) {
			return
		}
		h.logger.ErrorContext(ctx, "checkout failed",
			slog.Int64("customer_id", req.CustomerID),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Checkout failed")
		return
	}

	respondJSON(h.logger, w, http.StatusCreated, sale)
}

// ListSales handles GET /api/v1/sales
func (h *SalesHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sales, err := h.sales.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, sales)
}

// DeleteSale handles DELETE /api/v1/sales/{id}
func (h *SalesHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseID(r.PathValue("id"))
	if err != nil {
		respondError(h.logger, w, http.StatusBadRequest, "Invalid sale ID")
		return
	}

	if err := h.sales.Delete(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "failed to delete sale",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(h.logger, w, http.StatusInternalServerError, "Failed to delete sale")
		return
	}

	respondJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"message": "Sale deleted successfully",
		"id":      id,
	})
}

// Request/Response DTOs

// CartResponse is the cart view returned by every cart mutation
type CartResponse struct {
	Lines []domain.CartLine `json:"lines"`
	Total int64             `json:"total"`
}

// AddLineRequest represents the request body for adding a cart line
type AddLineRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// CheckoutRequest represents the request body for checkout
type CheckoutRequest struct {
	CustomerID int64 `json:"customer_id,omitempty"`
}
