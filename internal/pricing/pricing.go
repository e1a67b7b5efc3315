package pricing

import (
	"fmt"
	"math"

	"backend/internal/models"
)

// Flat charges applied to every order, in major currency units. Matching the
// storefront cart: not derived from address, weight, or order size.
const (
	ShippingCost = 25.0
	TaxAmount    = 15.0
)

// FallbackMode selects which unit price wins when a line item carries only one
// of its two price fields.
type FallbackMode string

const (
	// PreferDiscounted uses the discounted price when present, falling back
	// to the regular price.
	PreferDiscounted FallbackMode = "discounted"
	// PreferRegular uses the regular price when present, falling back to the
	// discounted price.
	PreferRegular FallbackMode = "regular"
)

func ParseFallbackMode(value string) (FallbackMode, error) {
	switch FallbackMode(value) {
	case PreferDiscounted, PreferRegular:
		return FallbackMode(value), nil
	}
	return "", fmt.Errorf("unknown price fallback mode %q", value)
}

// Amount is the computed charge breakdown for one checkout attempt. It is
// derived fresh each time and never persisted on its own.
type Amount struct {
	Subtotal     float64 `json:"subtotal"`
	ShippingCost float64 `json:"shippingCost"`
	TaxAmount    float64 `json:"taxAmount"`
	Total        float64 `json:"total"`
}

// TotalPaise returns the total in the minor currency unit expected by the
// payment gateway.
func (a Amount) TotalPaise() int64 {
	return int64(math.Round(a.Total * 100))
}

// UnitPrice resolves the effective unit price of a line item under the given
// fallback mode. A zero price field counts as absent.
func UnitPrice(item models.CartLineItem, mode FallbackMode) float64 {
	if mode == PreferRegular {
		if item.RegularPrice > 0 {
			return item.RegularPrice
		}
		return item.DiscountedPrice
	}
	if item.DiscountedPrice > 0 {
		return item.DiscountedPrice
	}
	return item.RegularPrice
}

// Calculate produces the order amount for a set of cart line items:
// subtotal over effective unit prices plus the flat shipping and tax charges.
func Calculate(items []models.CartLineItem, mode FallbackMode) (Amount, error) {
	if len(items) == 0 {
		return Amount{}, fmt.Errorf("at least one item is required")
	}

	var subtotal float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return Amount{}, fmt.Errorf("quantity must be greater than zero")
		}
		if item.DiscountedPrice > 0 && item.RegularPrice > 0 && item.DiscountedPrice > item.RegularPrice {
			return Amount{}, fmt.Errorf("discounted price must not exceed regular price")
		}
		unit := UnitPrice(item, mode)
		if unit <= 0 {
			return Amount{}, fmt.Errorf("item %s has no usable price", item.ProductID)
		}
		subtotal += unit * float64(item.Quantity)
	}

	return Amount{
		Subtotal:     subtotal,
		ShippingCost: ShippingCost,
		TaxAmount:    TaxAmount,
		Total:        subtotal + ShippingCost + TaxAmount,
	}, nil
}
