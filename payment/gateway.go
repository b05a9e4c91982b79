package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"krishimitra/globals"
)

// Prefill is buyer-identifying data handed to the hosted widget.
type Prefill struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session describes an opened hosted checkout. The widget itself renders
// out-of-process; completion arrives later as a signed callback.
type Session struct {
	SessionID string  `json:"sessionId"`
	URL       string  `json:"url"`
	Key       string  `json:"key"`
	Amount    int64   `json:"amount"` // minor units (paise)
	Currency  string  `json:"currency"`
	Prefill   Prefill `json:"prefill"`
}

// Completion is the payload of the gateway's completion callback. A
// non-empty PaymentID means the processor asserts success.
type Completion struct {
	PaymentID string `json:"razorpay_payment_id"`
	Error     string `json:"error,omitempty"`
}

// Gateway abstracts the hosted payment processor so another provider (or a
// test fake) can substitute.
type Gateway interface {
	OpenCheckout(sessionID string, amountMinorUnits int64, currency string, prefill Prefill) (Session, error)
}

// HostedGateway builds sessions for the externally hosted widget.
type HostedGateway struct {
	BaseURL string
	Key     string
}

func NewHostedGateway() *HostedGateway {
	return &HostedGateway{
		BaseURL: globals.Getenv("GATEWAY_URL", "https://checkout.example.com/pay"),
		Key:     globals.GatewayKey,
	}
}

func (g *HostedGateway) OpenCheckout(sessionID string, amountMinorUnits int64, currency string, prefill Prefill) (Session, error) {
	if amountMinorUnits <= 0 {
		return Session{}, fmt.Errorf("invalid amount %d", amountMinorUnits)
	}
	return Session{
		SessionID: sessionID,
		URL:       g.BaseURL + "/" + sessionID,
		Key:       g.Key,
		Amount:    amountMinorUnits,
		Currency:  currency,
		Prefill:   prefill,
	}, nil
}

// Sign computes the callback signature for a session/payment pair.
func Sign(secret []byte, sessionID, paymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sessionID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a callback against the gateway shared secret. A
// client-fabricated payment id without the secret cannot produce a valid
// signature, so unverified callbacks never reach the order writer.
func VerifySignature(secret []byte, sessionID, paymentID, signature string) bool {
	want := Sign(secret, sessionID, paymentID)
	return hmac.Equal([]byte(want), []byte(signature))
}
