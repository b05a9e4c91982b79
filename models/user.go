package models

import "time"

const (
	RoleFarmer = "farmer"
	RoleVendor = "vendor"
)

type User struct {
	UserID        string         `json:"userid" bson:"userid"`
	Username      string         `json:"username" bson:"username"`
	Email         string         `json:"email" bson:"email"`
	PasswordHash  string         `json:"-" bson:"password_hash"`
	Role          []string       `json:"role" bson:"role"`
	Name          string         `json:"name,omitempty" bson:"name,omitempty"`
	Cart          []string       `json:"cart" bson:"cart"`     // product ids awaiting checkout
	Orders        []OrderSummary `json:"orders" bson:"orders"` // denormalized copies, buyer and vendor side
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
	LastLogin     time.Time      `json:"last_login" bson:"last_login"`
	PhoneNumber   string         `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	RefreshToken  string         `json:"-" bson:"refreshtoken,omitempty"`
	RefreshExpiry time.Time      `json:"refreshexp" bson:"refreshexp"`
}
