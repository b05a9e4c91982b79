package checkout

import (
	"math"

	"krishimitra/models"
)

// ShippingFee is shown on the quote. It is not added into the charged
// total; existing stored amounts were computed without it, so changing
// this would break reconciliation against historical orders.
const ShippingFee = 50.0

// Quote is the priced view of a materialized cart.
type Quote struct {
	Subtotal        float64 `json:"subtotal"`
	DiscountPercent float64 `json:"discountPercent"`
	Shipping        float64 `json:"shipping"`
	Total           float64 `json:"total"`
}

// Price derives the quote from product prices and an active percentage
// discount. Pure; float64 throughout, rounding happens at display time only.
func Price(products []models.Product, discountPercent float64) Quote {
	var subtotal float64
	for _, p := range products {
		subtotal += p.Price
	}

	total := subtotal - (subtotal*discountPercent)/100

	return Quote{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		Shipping:        ShippingFee,
		Total:           total,
	}
}

// AmountMinorUnits converts a rupee amount to paise for the gateway,
// rounding to the nearest paisa. Truncation would undercharge by one
// paisa for amounts like 8.20 whose float64 form sits just below the
// exact product.
func AmountMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
