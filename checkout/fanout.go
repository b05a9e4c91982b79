package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"krishimitra/models"
	"krishimitra/store"
	"krishimitra/utils"
)

// Placement carries everything the writer needs; product snapshots were
// captured when the checkout session opened, so prices are purchase-time
// prices regardless of later edits.
type Placement struct {
	UserID    string
	Email     string
	Address   models.Address
	Products  []models.Product
	Total     float64
	PaymentID string
}

// Writer records one purchase event across three documents: the canonical
// order, the vendor's order summaries and the buyer's order summaries.
//
// The three writes are sequential, not transactional. The summary updates
// read the user document and write the whole orders array back; two
// checkouts hitting the same vendor at the same instant can lose one
// update (last writer wins). Contention at that granularity is rare in the
// target usage pattern and the per-buyer lock taken by the callback
// handler covers the double-submit case, so this stays unguarded.
type Writer struct {
	Users  store.UserStore
	Orders store.OrderStore

	// overridable for tests
	Now   func() time.Time
	NewID func() string
}

func NewWriter(users store.UserStore, orders store.OrderStore) *Writer {
	return &Writer{
		Users:  users,
		Orders: orders,
		Now:    time.Now,
		NewID:  utils.GetUUID,
	}
}

// PlaceOrder is invoked only with a verified, non-empty payment id.
//
// Placement is keyed by payment id: re-invoking with an id that already
// produced an order resumes the summary fan-out (appends dedupe by order
// id) instead of creating a second order, so a retried callback heals a
// partially recorded purchase rather than double-ordering.
//
// There is no rollback. If order creation succeeds and a later step
// fails, the canonical order exists without its summaries and the buyer's
// cart stays uncleared; the caller surfaces one failure and a retry with
// the same payment id completes the remainder.
func (w *Writer) PlaceOrder(ctx context.Context, p Placement) (*models.Order, error) {
	if p.PaymentID == "" {
		return nil, errors.New("placement without payment id")
	}
	if len(p.Products) == 0 {
		return nil, errors.New("placement with empty cart")
	}

	if existing, err := w.Orders.FindByPaymentID(ctx, p.PaymentID); err == nil {
		log.Printf("PlaceOrder: payment %s already placed as order %s, resuming fan-out\n", p.PaymentID, existing.OrderID)
		if err := w.fanOut(ctx, existing); err != nil {
			return existing, err
		}
		return existing, nil
	} else if err != store.ErrNotFound {
		return nil, fmt.Errorf("payment dedup lookup: %w", err)
	}

	now := w.Now()
	order := &models.Order{
		OrderID:   w.NewID(),
		Products:  p.Products,
		Address:   p.Address,
		Email:     p.Email,
		UserID:    p.UserID,
		PaymentID: p.PaymentID,
		Status:    models.StatusPending,
		StatusHistory: []models.StatusEntry{{
			Status:    models.StatusPending,
			Timestamp: now,
			Note:      "Order placed successfully",
		}},
		TotalAmount: p.Total,
		VendorID:    p.Products[0].VendorID,
		CreatedAt:   now,
	}

	// Step 1 must precede the summary writes: the summaries embed the
	// generated order id.
	if _, err := w.Orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := w.fanOut(ctx, order); err != nil {
		return order, err
	}
	return order, nil
}

// fanOut appends the order summary to the vendor record, then to the buyer
// record together with the cart clear. Appends skip records that already
// hold this order id.
func (w *Writer) fanOut(ctx context.Context, order *models.Order) error {
	summary := order.Summary()

	vendor, err := w.Users.GetUser(ctx, order.VendorID)
	switch {
	case err == store.ErrNotFound:
		log.Printf("PlaceOrder: vendor %s not found, skipping vendor summary\n", order.VendorID)
	case err != nil:
		return fmt.Errorf("read vendor record: %w", err)
	default:
		if !hasOrder(vendor.Orders, order.OrderID) {
			if err := w.Users.SetOrders(ctx, vendor.UserID, append(vendor.Orders, summary)); err != nil {
				return fmt.Errorf("write vendor record: %w", err)
			}
		}
	}

	buyer, err := w.Users.GetUser(ctx, order.UserID)
	switch {
	case err == store.ErrNotFound:
		log.Printf("PlaceOrder: buyer %s not found, skipping buyer summary\n", order.UserID)
	case err != nil:
		return fmt.Errorf("read buyer record: %w", err)
	default:
		orders := buyer.Orders
		if !hasOrder(orders, order.OrderID) {
			orders = append(orders, summary)
		}
		// Summary append and cart clear share one write; the cart
		// survives any failure before this point.
		if err := w.Users.SetOrdersAndClearCart(ctx, buyer.UserID, orders); err != nil {
			return fmt.Errorf("write buyer record: %w", err)
		}
	}

	return nil
}

func hasOrder(orders []models.OrderSummary, orderID string) bool {
	for _, o := range orders {
		if o.OrderID == orderID {
			return true
		}
	}
	return false
}
