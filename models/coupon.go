package models

// Coupon is a named, unlimited-use percentage discount token.
// The code is the primary key.
type Coupon struct {
	Code  string  `json:"couponCode" bson:"couponCode"`
	Value float64 `json:"value" bson:"value"` // percent, 0..100
}
