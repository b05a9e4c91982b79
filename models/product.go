package models

import "time"

// Product is a read-only snapshot from the checkout pipeline's perspective.
type Product struct {
	ProductID   string    `json:"productId" bson:"productId"`
	ProductName string    `json:"productName" bson:"productName"`
	Price       float64   `json:"price" bson:"price"` // unit price, INR
	ImageURL    string    `json:"imageUrl" bson:"imageUrl"`
	VendorID    string    `json:"vendorId" bson:"vendorId"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
