package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"krishimitra/checkout"
	"krishimitra/store"
	"krishimitra/utils"

	"github.com/julienschmidt/httprouter"
)

// CartService serves the buyer's pending selection: the cart array on the
// user document, holding distinct product ids.
type CartService struct {
	Users    store.UserStore
	Products store.ProductStore
	Coupons  store.CouponStore
}

func NewCartService(users store.UserStore, products store.ProductStore, coupons store.CouponStore) *CartService {
	return &CartService{Users: users, Products: products, Coupons: coupons}
}

// GetCart materializes the user's cart and returns it with a quote.
// An optional ?coupon= code is resolved for the quote; an unknown code
// degrades to zero discount.
func (s *CartService) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		log.Println("GetCart user fetch error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	products := checkout.Materialize(ctx, s.Products, user.Cart)

	discount := 0.0
	if code := r.URL.Query().Get("coupon"); code != "" {
		if coupon, err := s.Coupons.GetCoupon(ctx, code); err == nil {
			discount = coupon.Value
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"products": products,
		"quote":    checkout.Price(products, discount),
	})
}

// AddToCart appends a product id to the cart. Carts are single-vendor:
// a product owned by a different vendor than the items already present is
// rejected rather than silently mis-attributed at order time.
func (s *CartService) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ProductID == "" {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	product, err := s.Products.GetProduct(ctx, payload.ProductID)
	if err == store.ErrNotFound {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("AddToCart product fetch error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		log.Println("AddToCart user fetch error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	for _, id := range user.Cart {
		if id == payload.ProductID {
			utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "already in cart"})
			return
		}
	}

	// Single-vendor constraint, checked against whatever already resolves.
	existing := checkout.Materialize(ctx, s.Products, user.Cart)
	for _, p := range existing {
		if p.VendorID != product.VendorID {
			utils.RespondWithJSON(w, http.StatusConflict, utils.M{
				"success": false,
				"message": "Cart items must belong to a single vendor",
			})
			return
		}
	}

	if err := s.Users.SetCart(ctx, userID, append(user.Cart, payload.ProductID)); err != nil {
		log.Println("AddToCart SetCart error:", err)
		http.Error(w, "Failed to add to cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]string{"status": "added"})
}

// RemoveFromCart drops one product id from the cart.
func (s *CartService) RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	productID := ps.ByName("productid")
	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		log.Println("RemoveFromCart user fetch error:", err)
		http.Error(w, "Failed to update cart", http.StatusInternalServerError)
		return
	}

	next := make([]string, 0, len(user.Cart))
	for _, id := range user.Cart {
		if id != productID {
			next = append(next, id)
		}
	}

	if err := s.Users.SetCart(ctx, userID, next); err != nil {
		log.Println("RemoveFromCart SetCart error:", err)
		http.Error(w, "Failed to update cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// EmptyCart clears the cart array atomically.
func (s *CartService) EmptyCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := s.Users.SetCart(ctx, userID, []string{}); err != nil {
		log.Println("EmptyCart SetCart error:", err)
		http.Error(w, "Failed to empty cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "emptied"})
}
