package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"krishimitra/db"
	"krishimitra/globals"
	"krishimitra/models"
	"krishimitra/mq"
	"krishimitra/payment"
	"krishimitra/rdx"
	"krishimitra/store"
	"krishimitra/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

const (
	sessionTTL = 30 * time.Minute
	outcomeTTL = 15 * time.Minute
	lockTTL    = 5 * time.Second
)

// Service drives the pipeline from cart to recorded order: quote, hosted
// payment session, signed completion callback, fan-out, outcome routing.
type Service struct {
	Users    store.UserStore
	Products store.ProductStore
	Coupons  store.CouponStore
	Gateway  payment.Gateway
	Writer   *Writer

	validate *validator.Validate

	// redis access, overridable for tests
	rdxGet   func(key string) (string, error)
	rdxSet   func(key, value string, ttl time.Duration) error
	rdxSetNX func(key, value string, ttl time.Duration) (bool, error)
	rdxDel   func(key string)
}

func NewService(users store.UserStore, products store.ProductStore, coupons store.CouponStore, orders store.OrderStore, gw payment.Gateway) *Service {
	return &Service{
		Users:    users,
		Products: products,
		Coupons:  coupons,
		Gateway:  gw,
		Writer:   NewWriter(users, orders),
		validate: validator.New(),
		rdxGet:   rdx.RdxGet,
		rdxSet:   rdx.RdxSet,
		rdxSetNX: rdx.RdxSetNX,
		rdxDel:   rdx.RdxDel,
	}
}

// session state parked in redis between widget open and completion
// callback. Product snapshots are frozen here: the order records the
// prices the buyer saw.
type sessionState struct {
	UserID   string           `json:"userId"`
	Email    string           `json:"email"`
	Address  models.Address   `json:"address"`
	Products []models.Product `json:"products"`
	Total    float64          `json:"total"`
}

type initiateRequest struct {
	Address    models.Address `json:"address" validate:"required"`
	CouponCode string         `json:"couponCode"`
}

// Initiate validates the address, prices the materialized cart and opens a
// hosted payment session. Nothing is ordered yet; if the buyer dismisses
// the widget no callback ever arrives, the session expires and the cart is
// untouched.
func (s *Service) Initiate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		log.Println("Initiate user fetch error:", err)
		http.Error(w, "Failed to start checkout", http.StatusInternalServerError)
		return
	}

	products := Materialize(ctx, s.Products, user.Cart)
	if len(products) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	discount := 0.0
	if req.CouponCode != "" {
		if coupon, err := s.Coupons.GetCoupon(ctx, req.CouponCode); err == nil {
			discount = coupon.Value
		}
	}
	quote := Price(products, discount)

	sessionID := utils.GetUUID()

	// Fire-and-forget analytics; failure never blocks checkout.
	go func() {
		click := models.PurchaseClick{UserID: userID, SessionID: sessionID, Timestamp: time.Now()}
		cctx, ccancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer ccancel()
		if _, err := db.PurchaseClicksCollection.InsertOne(cctx, click); err != nil {
			log.Println("Initiate purchase click insert error:", err)
		}
	}()

	session, err := s.Gateway.OpenCheckout(sessionID, AmountMinorUnits(quote.Total), "INR", payment.Prefill{
		Name:  req.Address.FullName,
		Email: user.Email,
	})
	if err != nil {
		log.Println("Initiate gateway error:", err)
		http.Error(w, "Failed to initialize payment", http.StatusBadGateway)
		return
	}

	state := sessionState{
		UserID:   userID,
		Email:    user.Email,
		Address:  req.Address,
		Products: products,
		Total:    quote.Total,
	}
	data, _ := json.Marshal(state)
	if err := s.rdxSet("checkout:session:"+sessionID, string(data), sessionTTL); err != nil {
		log.Println("Initiate session store error:", err)
		http.Error(w, "Failed to start checkout", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"session": session,
		"quote":   quote,
	})
}

// Complete is the gateway's completion callback. Every callback, success
// or failure, must carry a valid HMAC signature; nothing is read from the
// payload and no state is touched until it verifies. Only a signed,
// non-empty payment id reaches the fan-out writer.
func (s *Service) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	sessionID := ps.ByName("sessionid")

	raw, err := s.rdxGet("checkout:session:" + sessionID)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "error": "Unknown or expired checkout session"})
		return
	}
	var state sessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		log.Println("Complete session decode error:", err)
		http.Error(w, "Corrupt checkout session", http.StatusInternalServerError)
		return
	}

	var completion payment.Completion
	if err := json.NewDecoder(r.Body).Decode(&completion); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	// The signature covers the payment id even when it is empty, so a
	// failure callback must be signed too. Verifying first means an
	// unauthenticated caller who learns a session id cannot tear the
	// session down with a fabricated failure.
	signature := r.Header.Get("X-Gateway-Signature")
	if !payment.VerifySignature(globals.GatewaySecret, sessionID, completion.PaymentID, signature) {
		log.Printf("Complete: bad signature for session %s\n", sessionID)
		http.Error(w, "Invalid callback signature", http.StatusUnauthorized)
		return
	}

	if completion.PaymentID == "" {
		s.finish(w, sessionID, utils.M{
			"success": false,
			"error":   "Payment failed. Please try again.",
		}, http.StatusPaymentRequired)
		return
	}

	// One placement per buyer at a time; a second tab retries shortly.
	acquired, err := s.rdxSetNX("order_lock:"+state.UserID, "1", lockTTL)
	if err != nil || !acquired {
		http.Error(w, "please retry", http.StatusTooManyRequests)
		return
	}
	defer s.rdxDel("order_lock:" + state.UserID)

	order, err := s.Writer.PlaceOrder(ctx, Placement{
		UserID:    state.UserID,
		Email:     state.Email,
		Address:   state.Address,
		Products:  state.Products,
		Total:     state.Total,
		PaymentID: completion.PaymentID,
	})
	if err != nil {
		log.Println("Complete place order error:", err)
		// The session is kept: a retried callback with the same payment
		// id resumes the fan-out instead of hitting an expired session.
		outcome := utils.M{
			"success": false,
			"error":   "Failed to process order",
		}
		s.storeOutcome(sessionID, outcome)
		utils.RespondWithJSON(w, http.StatusInternalServerError, outcome)
		return
	}

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		OrderID:  order.OrderID,
		VendorID: order.VendorID,
		UserID:   order.UserID,
		Status:   order.Status,
	})

	s.finish(w, sessionID, utils.M{
		"success": true,
		"orderId": order.OrderID,
	}, http.StatusOK)
}

// storeOutcome records the terminal outcome for the status view.
func (s *Service) storeOutcome(sessionID string, outcome utils.M) {
	data, _ := json.Marshal(outcome)
	if err := s.rdxSet("checkout:outcome:"+sessionID, string(data), outcomeTTL); err != nil {
		log.Println("storeOutcome error:", err)
	}
}

// finish records the outcome, drops the session and answers the callback.
// Only settled callbacks come through here; a fan-out write failure keeps
// its session so a retry can resume.
func (s *Service) finish(w http.ResponseWriter, sessionID string, outcome utils.M, status int) {
	s.storeOutcome(sessionID, outcome)
	s.rdxDel("checkout:session:" + sessionID)
	utils.RespondWithJSON(w, status, outcome)
}

// Status serves the post-checkout view. Outcomes are transient: a session
// id that never completed, or whose outcome expired, yields a generic
// invalid-access response rather than an error page.
func (s *Service) Status(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	sessionID := ps.ByName("sessionid")

	raw, err := s.rdxGet("checkout:outcome:" + sessionID)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{
			"success": false,
			"message": "Invalid access",
		})
		return
	}

	var outcome map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &outcome); err != nil {
		log.Println("Status outcome decode error:", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, outcome)
}
