package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"krishimitra/store"
	"krishimitra/utils"

	"github.com/julienschmidt/httprouter"
)

type CouponRequest struct {
	Code string `json:"code"`
}

type CouponResponse struct {
	Valid   bool    `json:"valid"`
	Value   float64 `json:"value"` // percent discount, 0 when invalid
	Message string  `json:"message"`
}

// ApplyCoupon resolves a user-entered code to its percentage discount.
// An absent code yields zero discount and a user-visible notice; applying
// a second code simply replaces whatever the client held before.
func (s *CartService) ApplyCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req CouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		utils.RespondWithJSON(w, http.StatusOK, CouponResponse{Valid: false, Message: "No coupon provided"})
		return
	}

	coupon, err := s.Coupons.GetCoupon(ctx, code)
	if err == store.ErrNotFound {
		utils.RespondWithJSON(w, http.StatusOK, CouponResponse{Valid: false, Message: "Coupon not found"})
		return
	}
	if err != nil {
		log.Println("ApplyCoupon lookup error:", err)
		utils.RespondWithJSON(w, http.StatusOK, CouponResponse{Valid: false, Message: "Error applying coupon"})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, CouponResponse{
		Valid:   true,
		Value:   coupon.Value,
		Message: "Coupon applied successfully",
	})
}
