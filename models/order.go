package models

import (
	"fmt"
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// allowed status transitions; cancelled is absorbing and only reachable
// before shipment.
var statusTransitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// ValidTransition reports whether an order may move from -> to.
func ValidTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Address is embedded into the order at creation time, never reused.
type Address struct {
	FullName      string `json:"fullName" bson:"fullName" validate:"required"`
	StreetAddress string `json:"streetAddress" bson:"streetAddress" validate:"required"`
	City          string `json:"city" bson:"city" validate:"required"`
	State         string `json:"state" bson:"state" validate:"required"`
	Zip           string `json:"zip" bson:"zip" validate:"required"`
}

type StatusEntry struct {
	Status    string    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Note      string    `json:"note" bson:"note"`
}

// Order is the canonical record of a completed purchase. Product rows are
// denormalized snapshots captured at purchase time, not references.
type Order struct {
	OrderID       string        `json:"orderId" bson:"orderId"`
	Products      []Product     `json:"cartProducts" bson:"cartProducts"`
	Address       Address       `json:"userData" bson:"userData"`
	Email         string        `json:"email" bson:"email"`
	UserID        string        `json:"uid" bson:"uid"`
	PaymentID     string        `json:"paymentId" bson:"paymentId"`
	Status        string        `json:"status" bson:"status"`
	StatusHistory []StatusEntry `json:"statusHistory" bson:"statusHistory"`
	TotalAmount   float64       `json:"totalAmount" bson:"totalAmount"`
	VendorID      string        `json:"vendorId" bson:"vendorId"` // vendor of the first product; carts are single-vendor
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// OrderSummary is the projection duplicated onto buyer and vendor user
// records. The copies are kept in sync by separate writes, not a transaction.
type OrderSummary struct {
	OrderID   string    `json:"orderId" bson:"orderId"`
	User      Address   `json:"user" bson:"user"`
	Products  []Product `json:"products" bson:"products"`
	Amount    float64   `json:"amount" bson:"amount"`
	Status    string    `json:"status" bson:"status"`
	PaymentID string    `json:"paymentId" bson:"paymentId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Summary projects an order into the shape stored on user records.
func (o *Order) Summary() OrderSummary {
	return OrderSummary{
		OrderID:   o.OrderID,
		User:      o.Address,
		Products:  o.Products,
		Amount:    o.TotalAmount,
		Status:    o.Status,
		PaymentID: o.PaymentID,
		CreatedAt: o.CreatedAt,
	}
}

// AppendStatus records a lifecycle change on the canonical order.
func (o *Order) AppendStatus(status, note string) error {
	if !ValidTransition(o.Status, status) {
		return fmt.Errorf("invalid status transition %s -> %s", o.Status, status)
	}
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    status,
		Timestamp: time.Now(),
		Note:      note,
	})
	return nil
}
