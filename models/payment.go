package models

import "time"

// IdempotencyRecord caches one response per client-supplied key.
type IdempotencyRecord struct {
	Key         string                 `bson:"key"`
	Method      string                 `bson:"method"`
	Path        string                 `bson:"path"`
	UserID      string                 `bson:"userid"`
	RequestHash string                 `bson:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at"`
}

// PurchaseClick is the fire-and-forget analytics document recorded just
// before the hosted payment widget opens.
type PurchaseClick struct {
	UserID    string    `json:"userId" bson:"userId"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
