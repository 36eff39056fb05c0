package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bengkelpos/pos-be/internal/core/domain"
)

func TestInventoryItem_Validate(t *testing.T) {
	tests := []struct {
		name      string
		item      *domain.InventoryItem
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid_item",
			item: &domain.InventoryItem{
				Name:  "Busi NGK CPR9EA-9",
				Price: 25000,
				Stock: 10,
			},
			wantError: false,
		},
		{
			name: "missing_name",
			item: &domain.InventoryItem{
				Price: 25000,
				Stock: 10,
			},
			wantError: true,
			errorMsg:  "name",
		},
		{
			name: "whitespace_only_name",
			item: &domain.InventoryItem{
				Name:  "   ",
				Price: 25000,
			},
			wantError: true,
			errorMsg:  "name",
		},
		{
			name: "negative_price",
			item: &domain.InventoryItem{
				Name:  "Oli Mesin",
				Price: -1,
			},
			wantError: true,
			errorMsg:  "price",
		},
		{
			name: "negative_stock",
			item: &domain.InventoryItem{
				Name:  "Oli Mesin",
				Price: 55000,
				Stock: -3,
			},
			wantError: true,
			errorMsg:  "stock",
		},
		{
			name: "zero_price_and_stock_allowed",
			item: &domain.InventoryItem{
				Name: "Stiker Gratis",
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.True(t, domain.IsValidation(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestInventoryItem_StockStates(t *testing.T) {
	tests := []struct {
		name         string
		stock        int
		threshold    int
		wantLow      bool
		wantOutStock bool
	}{
		{name: "plenty_of_stock", stock: 20, threshold: 5, wantLow: false, wantOutStock: false},
		{name: "exactly_at_threshold", stock: 5, threshold: 5, wantLow: true, wantOutStock: false},
		{name: "below_threshold", stock: 1, threshold: 5, wantLow: true, wantOutStock: false},
		{name: "out_of_stock_is_not_low", stock: 0, threshold: 5, wantLow: false, wantOutStock: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &domain.InventoryItem{Name: "Busi", Stock: tt.stock}
			assert.Equal(t, tt.wantLow, item.LowStock(tt.threshold))
			assert.Equal(t, tt.wantOutStock, item.OutOfStock())
		})
	}
}

func TestInventoryItem_MatchesCode(t *testing.T) {
	item := &domain.InventoryItem{ID: 42, Name: "Kampas Rem Depan Vario 125"}

	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "exact_id", code: "42", want: true},
		{name: "other_id", code: "7", want: false},
		{name: "name_fragment_case_insensitive", code: "kampas rem", want: true},
		{name: "partial_word", code: "vario", want: true},
		{name: "no_match", code: "oli", want: false},
		{name: "empty_code", code: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, item.MatchesCode(tt.code))
		})
	}
}
