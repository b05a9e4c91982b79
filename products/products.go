package products

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"krishimitra/models"
	"krishimitra/store"
	"krishimitra/utils"

	"github.com/julienschmidt/httprouter"
)

type ProductService struct {
	Products store.ProductStore
	Coupons  store.CouponStore
}

func NewProductService(products store.ProductStore, coupons store.CouponStore) *ProductService {
	return &ProductService{Products: products, Coupons: coupons}
}

// GetProduct returns one product snapshot.
func (s *ProductService) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	product, err := s.Products.GetProduct(ctx, ps.ByName("id"))
	if err == store.ErrNotFound {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("GetProduct fetch error:", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

// ListProducts returns the storefront catalog, newest first.
func (s *ProductService) ListProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := utils.ParseQueryOptions(r)
	list, err := s.Products.ListProducts(ctx, int64(opts.Limit), int64((opts.Page-1)*opts.Limit))
	if err != nil {
		log.Println("ListProducts error:", err)
		http.Error(w, "Could not retrieve products", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// ListVendorProducts returns the requesting vendor's own catalog.
func (s *ProductService) ListVendorProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vendorID := utils.GetUserIDFromRequest(r)
	list, err := s.Products.ListByVendor(ctx, vendorID)
	if err != nil {
		log.Println("ListVendorProducts error:", err)
		http.Error(w, "Could not retrieve products", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Product{}
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// CreateProduct adds an item to the vendor's catalog.
func (s *ProductService) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	vendorID := utils.GetUserIDFromRequest(r)

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if product.ProductName == "" || product.Price <= 0 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}

	product.ProductID = utils.GetUUID()
	product.VendorID = vendorID
	product.CreatedAt = time.Now()

	if err := s.Products.CreateProduct(ctx, &product); err != nil {
		log.Println("CreateProduct insert error:", err)
		http.Error(w, "Product creation failed", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// CreateCoupon registers a discount code owned by vendor tooling.
func (s *ProductService) CreateCoupon(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var coupon models.Coupon
	if err := json.NewDecoder(r.Body).Decode(&coupon); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if coupon.Code == "" || coupon.Value < 0 || coupon.Value > 100 {
		http.Error(w, "Coupon needs a code and a discount between 0 and 100", http.StatusBadRequest)
		return
	}

	if err := s.Coupons.CreateCoupon(ctx, &coupon); err != nil {
		log.Println("CreateCoupon insert error:", err)
		http.Error(w, "Coupon creation failed", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, coupon)
}

// DeleteCoupon removes a discount code.
func (s *ProductService) DeleteCoupon(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := s.Coupons.DeleteCoupon(ctx, ps.ByName("code"))
	if err == store.ErrNotFound {
		http.Error(w, "Coupon not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("DeleteCoupon error:", err)
		http.Error(w, "Coupon deletion failed", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
