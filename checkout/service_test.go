package checkout

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"krishimitra/globals"
	"krishimitra/models"
	"krishimitra/payment"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data map[string]string
}

func (f *fakeRedis) get(key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (f *fakeRedis) set(key, value string, _ time.Duration) error {
	f.data[key] = value
	return nil
}

func (f *fakeRedis) setnx(key, value string, _ time.Duration) (bool, error) {
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value
	return true, nil
}

func (f *fakeRedis) del(key string) {
	delete(f.data, key)
}

func completionService(users *fakeUsers, orders *fakeOrders) (*Service, *fakeRedis) {
	svc := NewService(users,
		&fakeProducts{products: map[string]models.Product{}},
		&fakeCoupons{coupons: map[string]models.Coupon{}},
		orders,
		&payment.HostedGateway{BaseURL: "https://pay.test", Key: "key_1"})

	fr := &fakeRedis{data: map[string]string{}}
	svc.rdxGet = fr.get
	svc.rdxSet = fr.set
	svc.rdxSetNX = fr.setnx
	svc.rdxDel = fr.del
	return svc, fr
}

func seedSession(t *testing.T, fr *fakeRedis, sessionID string) {
	t.Helper()
	state := sessionState{
		UserID: "buyer-1",
		Email:  "buyer@example.com",
		Address: models.Address{
			FullName: "Asha Patel", StreetAddress: "14 Canal Rd",
			City: "Nashik", State: "MH", Zip: "422001",
		},
		Products: []models.Product{
			{ProductID: "p1", Price: 120, VendorID: "vendor-1"},
			{ProductID: "p2", Price: 80, VendorID: "vendor-1"},
		},
		Total: 200,
	}
	data, err := json.Marshal(state)
	require.NoError(t, err)
	fr.data["checkout:session:"+sessionID] = string(data)
}

func callbackRequest(sessionID, paymentID, signature string) (*http.Request, httprouter.Params) {
	body, _ := json.Marshal(map[string]string{"razorpay_payment_id": paymentID})
	r := httptest.NewRequest(http.MethodPost, "/api/checkout/session/"+sessionID+"/complete", bytes.NewReader(body))
	if signature != "" {
		r.Header.Set("X-Gateway-Signature", signature)
	}
	return r, httprouter.Params{{Key: "sessionid", Value: sessionID}}
}

func TestCompleteUnsignedCallbackLeavesSessionIntact(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	svc, fr := completionService(users, orders)
	seedSession(t, fr, "sess-1")

	// fabricated failure with no signature
	w := httptest.NewRecorder()
	r, ps := callbackRequest("sess-1", "", "")
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, fr.data, "checkout:session:sess-1", "session must survive an unverified callback")
	require.NotContains(t, fr.data, "checkout:outcome:sess-1")
	require.Empty(t, orders.orders)
}

func TestCompleteUnsignedSuccessCallbackRejected(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	svc, fr := completionService(users, orders)
	seedSession(t, fr, "sess-1")

	w := httptest.NewRecorder()
	r, ps := callbackRequest("sess-1", "pay_forged", "deadbeef")
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, orders.orders)
	require.Contains(t, fr.data, "checkout:session:sess-1")
}

func TestCompleteSignedFailureSettlesSession(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	svc, fr := completionService(users, orders)
	seedSession(t, fr, "sess-1")

	sig := payment.Sign(globals.GatewaySecret, "sess-1", "")
	w := httptest.NewRecorder()
	r, ps := callbackRequest("sess-1", "", sig)
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	require.Empty(t, orders.orders)
	require.NotContains(t, fr.data, "checkout:session:sess-1")
	require.Contains(t, fr.data, "checkout:outcome:sess-1")
	// cart untouched on payment failure
	require.NotEmpty(t, users.users["buyer-1"].Cart)
}

func TestCompleteSignedSuccessPlacesOrder(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	svc, fr := completionService(users, orders)
	seedSession(t, fr, "sess-1")

	sig := payment.Sign(globals.GatewaySecret, "sess-1", "pay_abc123")
	w := httptest.NewRecorder()
	r, ps := callbackRequest("sess-1", "pay_abc123", sig)
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, orders.orders, 1)
	require.Empty(t, users.users["buyer-1"].Cart)
	require.NotContains(t, fr.data, "checkout:session:sess-1")
	require.NotContains(t, fr.data, "order_lock:buyer-1", "lock must be released")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	require.NotEmpty(t, resp["orderId"])
}

func TestCompleteWriteFailureKeepsSessionForRetry(t *testing.T) {
	users := seededUsers()
	orders := &fakeOrders{orders: map[string]*models.Order{}}
	svc, fr := completionService(users, orders)
	seedSession(t, fr, "sess-1")

	sig := payment.Sign(globals.GatewaySecret, "sess-1", "pay_abc123")

	// first callback: buyer-side write fails after the order lands
	users.failBuyerWrite = true
	w := httptest.NewRecorder()
	r, ps := callbackRequest("sess-1", "pay_abc123", sig)
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, orders.orders, 1)
	require.Contains(t, fr.data, "checkout:session:sess-1", "session must survive a write failure")
	require.NotEmpty(t, users.users["buyer-1"].Cart)

	// retried callback resumes the fan-out on the same order
	users.failBuyerWrite = false
	w = httptest.NewRecorder()
	r, ps = callbackRequest("sess-1", "pay_abc123", sig)
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, orders.orders, 1)
	require.Len(t, users.users["buyer-1"].Orders, 1)
	require.Len(t, users.users["vendor-1"].Orders, 1)
	require.Empty(t, users.users["buyer-1"].Cart)
	require.NotContains(t, fr.data, "checkout:session:sess-1")
}

func TestCompleteUnknownSession(t *testing.T) {
	svc, _ := completionService(seededUsers(), &fakeOrders{orders: map[string]*models.Order{}})

	w := httptest.NewRecorder()
	r, ps := callbackRequest("sess-nope", "pay_1", "sig")
	svc.Complete(w, r, ps)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusUnknownSessionIsInvalidAccess(t *testing.T) {
	svc, _ := completionService(seededUsers(), &fakeOrders{orders: map[string]*models.Order{}})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/checkout/session/sess-x/status", nil)
	svc.Status(w, r, httprouter.Params{{Key: "sessionid", Value: "sess-x"}})

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, false, resp["success"])
	require.Equal(t, "Invalid access", resp["message"])
}

func TestStatusReturnsStoredOutcome(t *testing.T) {
	svc, fr := completionService(seededUsers(), &fakeOrders{orders: map[string]*models.Order{}})
	fr.data["checkout:outcome:sess-1"] = `{"success":true,"orderId":"o1"}`

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/checkout/session/sess-1/status", nil)
	svc.Status(w, r, httprouter.Params{{Key: "sessionid", Value: "sess-1"}})

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	require.Equal(t, "o1", resp["orderId"])
}
