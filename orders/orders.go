package orders

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"krishimitra/models"
	"krishimitra/mq"
	"krishimitra/store"
	"krishimitra/utils"

	"github.com/julienschmidt/httprouter"
)

// OrderService manages the order lifecycle after placement. Every status
// change updates the canonical order and then patches the buyer's and
// vendor's summary copies with the same read-modify-write pattern the
// placement fan-out uses.
type OrderService struct {
	Orders store.OrderStore
	Users  store.UserStore
}

func NewOrderService(orders store.OrderStore, users store.UserStore) *OrderService {
	return &OrderService{Orders: orders, Users: users}
}

// GetMyOrders lists orders the requesting user placed.
func (s *OrderService) GetMyOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	orders, err := s.Orders.ListByBuyer(ctx, userID)
	if err != nil {
		log.Println("GetMyOrders list error:", err)
		http.Error(w, "Could not retrieve orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetIncomingOrders lists orders received by the requesting vendor.
func (s *OrderService) GetIncomingOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vendorID := utils.GetUserIDFromRequest(r)
	orders, err := s.Orders.ListByVendor(ctx, vendorID)
	if err != nil {
		log.Println("GetIncomingOrders list error:", err)
		http.Error(w, "Could not retrieve orders", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	utils.RespondWithJSON(w, http.StatusOK, orders)
}

// GetOrder returns one order to its buyer or its vendor.
func (s *OrderService) GetOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, ok := s.authorizedOrder(ctx, w, r, ps.ByName("id"))
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateStatus moves an order along pending -> processing -> shipped ->
// delivered, or to cancelled while unshipped. Only the owning vendor may
// change status. The history entry is appended on the canonical order and
// both summary copies are re-synchronized.
func (s *OrderService) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	vendorID := utils.GetUserIDFromRequest(r)
	orderID := ps.ByName("id")

	var payload struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Status == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	order, err := s.Orders.GetOrder(ctx, orderID)
	if err == store.ErrNotFound {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("UpdateStatus order fetch error:", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if order.VendorID != vendorID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if !models.ValidTransition(order.Status, payload.Status) {
		utils.RespondWithJSON(w, http.StatusConflict, utils.M{
			"success": false,
			"message": "Cannot move order from " + order.Status + " to " + payload.Status,
		})
		return
	}

	note := payload.Note
	if note == "" {
		note = "Order " + payload.Status + " by vendor"
	}
	entry := models.StatusEntry{Status: payload.Status, Timestamp: time.Now(), Note: note}

	if err := s.Orders.SetStatus(ctx, orderID, payload.Status, entry); err != nil {
		log.Println("UpdateStatus set error:", err)
		http.Error(w, "Failed to update order status", http.StatusInternalServerError)
		return
	}

	// Same non-transactional pattern as placement: patch both copies,
	// log and carry on if one is missing.
	s.syncSummaryStatus(ctx, order.UserID, orderID, payload.Status)
	s.syncSummaryStatus(ctx, order.VendorID, orderID, payload.Status)

	mq.EmitOrderEvent(ctx, mq.OrderEvent{
		OrderID:  orderID,
		VendorID: order.VendorID,
		UserID:   order.UserID,
		Status:   payload.Status,
	})

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "status": payload.Status})
}

// syncSummaryStatus rewrites one user's summary copy of the order with the
// new status.
func (s *OrderService) syncSummaryStatus(ctx context.Context, userID, orderID, status string) {
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		log.Printf("syncSummaryStatus: user %s fetch error: %v\n", userID, err)
		return
	}

	changed := false
	for i := range user.Orders {
		if user.Orders[i].OrderID == orderID && user.Orders[i].Status != status {
			user.Orders[i].Status = status
			changed = true
		}
	}
	if !changed {
		return
	}

	if err := s.Users.SetOrders(ctx, userID, user.Orders); err != nil {
		log.Printf("syncSummaryStatus: user %s write error: %v\n", userID, err)
	}
}

func (s *OrderService) authorizedOrder(ctx context.Context, w http.ResponseWriter, r *http.Request, orderID string) (*models.Order, bool) {
	userID := utils.GetUserIDFromRequest(r)

	order, err := s.Orders.GetOrder(ctx, orderID)
	if err == store.ErrNotFound {
		http.Error(w, "Order not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		log.Println("order fetch error:", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}

	if order.UserID != userID && order.VendorID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return nil, false
	}
	return order, true
}
