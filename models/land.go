package models

import "time"

// Land is a farmer's listing offered for sale or rent.
type Land struct {
	LandID    string    `json:"landId" bson:"landId"`
	OwnerID   string    `json:"ownerId" bson:"ownerId"`
	Title     string    `json:"title" bson:"title"`
	Location  string    `json:"location" bson:"location"`
	AreaAcres float64   `json:"areaAcres" bson:"areaAcres"`
	Price     float64   `json:"price" bson:"price"`
	Mode      string    `json:"mode" bson:"mode"` // "sale" or "rent"
	ImageURL  string    `json:"imageUrl" bson:"imageUrl"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
