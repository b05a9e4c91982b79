// Package store puts the Mongo collections behind small per-entity
// interfaces so the checkout pipeline can run against fakes in tests and
// against any document store in production.
package store

import (
	"context"
	"errors"

	"krishimitra/models"
)

// ErrNotFound is returned for absent documents regardless of backend.
var ErrNotFound = errors.New("document not found")

type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	ListByVendor(ctx context.Context, vendorID string) ([]models.Product, error)
	ListProducts(ctx context.Context, limit, skip int64) ([]models.Product, error)
}

type CouponStore interface {
	// GetCoupon resolves a code to its discount. Malformed documents
	// (value outside 0..100) are rejected here, not defaulted.
	GetCoupon(ctx context.Context, code string) (*models.Coupon, error)
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	DeleteCoupon(ctx context.Context, code string) error
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	SetCart(ctx context.Context, id string, cart []string) error
	// SetOrders overwrites the whole orders array (last-writer-wins).
	SetOrders(ctx context.Context, id string, orders []models.OrderSummary) error
	// SetOrdersAndClearCart performs the buyer-side write: orders
	// overwrite and cart clear in one update.
	SetOrdersAndClearCart(ctx context.Context, id string, orders []models.OrderSummary) error
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *models.Order) (string, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	// FindByPaymentID dedupes re-invoked placements.
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	SetStatus(ctx context.Context, id, status string, entry models.StatusEntry) error
	ListByBuyer(ctx context.Context, userID string) ([]models.Order, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.Order, error)
}
