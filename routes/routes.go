package routes

import (
	"net/http"

	"krishimitra/assist"
	"krishimitra/auth"
	"krishimitra/cart"
	"krishimitra/checkout"
	"krishimitra/lands"
	"krishimitra/middleware"
	"krishimitra/orders"
	"krishimitra/payment"
	"krishimitra/products"
	"krishimitra/ratelim"
	"krishimitra/store"

	"github.com/julienschmidt/httprouter"
)

// Setup builds every service against the Mongo-backed stores and mounts
// all routes.
func Setup(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	users := store.MongoUsers{}
	productsStore := store.MongoProducts{}
	coupons := store.MongoCoupons{}
	ordersStore := store.MongoOrders{}

	cartSvc := cart.NewCartService(users, productsStore, coupons)
	checkoutSvc := checkout.NewService(users, productsStore, coupons, ordersStore, payment.NewHostedGateway())
	orderSvc := orders.NewOrderService(ordersStore, users)
	productSvc := products.NewProductService(productsStore, coupons)
	assistSvc := assist.NewService(assist.NewHostedResponder())

	AddStaticRoutes(router)
	AddAuthRoutes(router, rateLimiter)
	AddProductRoutes(router, rateLimiter, productSvc)
	AddCartRoutes(router, rateLimiter, cartSvc)
	AddCheckoutRoutes(router, rateLimiter, checkoutSvc)
	AddOrderRoutes(router, rateLimiter, orderSvc)
	AddLandRoutes(router, rateLimiter)
	AddAssistRoutes(router, assistSvc)
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/images/*filepath", http.Dir("uploads/images"))
	router.ServeFiles("/uploads/thumbs/*filepath", http.Dir("uploads/thumbs"))
}

func AddAuthRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/register", rateLimiter.Limit(auth.Register))
	router.POST("/api/auth/login", rateLimiter.Limit(auth.Login))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/token/refresh", rateLimiter.Limit(auth.RefreshToken))
}

func AddProductRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, svc *products.ProductService) {
	vendorOnly := middleware.Chain(rateLimiter.Limit, middleware.Authenticate, middleware.RequireRoles("vendor"))

	router.GET("/api/products", rateLimiter.Limit(svc.ListProducts))
	router.GET("/api/products/:id", rateLimiter.Limit(svc.GetProduct))
	router.POST("/api/products", vendorOnly(svc.CreateProduct))
	router.GET("/api/vendor/products", vendorOnly(svc.ListVendorProducts))
	router.POST("/api/vendor/images", vendorOnly(products.UploadImage))

	router.POST("/api/coupons", vendorOnly(svc.CreateCoupon))
	router.DELETE("/api/coupons/:code", vendorOnly(svc.DeleteCoupon))
}

func AddCartRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, svc *cart.CartService) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.GET("/api/cart", authed(svc.GetCart))
	router.POST("/api/cart", authed(svc.AddToCart))
	router.DELETE("/api/cart/:productid", authed(svc.RemoveFromCart))
	router.DELETE("/api/cart", authed(svc.EmptyCart))
	router.POST("/api/cart/coupon", authed(svc.ApplyCoupon))
}

func AddCheckoutRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, svc *checkout.Service) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)

	router.POST("/api/checkout/session", authed(payment.Idempotent(svc.Initiate)))
	// Gateway callback authenticates by HMAC signature, not by user token.
	router.POST("/api/checkout/session/:sessionid/complete", rateLimiter.Limit(svc.Complete))
	router.GET("/api/checkout/session/:sessionid/status", rateLimiter.Limit(svc.Status))
}

func AddOrderRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter, svc *orders.OrderService) {
	authed := middleware.Chain(rateLimiter.Limit, middleware.Authenticate)
	vendorOnly := middleware.Chain(rateLimiter.Limit, middleware.Authenticate, middleware.RequireRoles("vendor"))

	router.GET("/api/orders", authed(svc.GetMyOrders))
	router.GET("/api/orders/incoming", vendorOnly(svc.GetIncomingOrders))
	router.GET("/api/orders/order/:id", authed(svc.GetOrder))
	router.PUT("/api/orders/order/:id/status", vendorOnly(svc.UpdateStatus))
	router.GET("/api/orders/order/:id/receipt", authed(svc.DownloadReceipt))
}

func AddLandRoutes(router *httprouter.Router, rateLimiter *ratelim.RateLimiter) {
	farmerOnly := middleware.Chain(rateLimiter.Limit, middleware.Authenticate, middleware.RequireRoles("farmer"))

	router.GET("/api/lands", rateLimiter.Limit(lands.ListLands))
	router.GET("/api/lands/:id", rateLimiter.Limit(lands.GetLand))
	router.POST("/api/lands", farmerOnly(lands.CreateLand))
	router.DELETE("/api/lands/:id", farmerOnly(lands.DeleteLand))
}

func AddAssistRoutes(router *httprouter.Router, svc *assist.Service) {
	router.GET("/ws/assist", svc.Chat)
}
