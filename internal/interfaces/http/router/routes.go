package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
)

// Handlers holds everything the API routes dispatch to. AdminAuth guards
// the dashboard and the authenticated auth routes; AuthRateLimit, when
// set, throttles login and refresh.
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Product     *handler.ProductHandler
	Import      *handler.ProductImportHandler
	Category    *handler.CategoryHandler
	Coupon      *handler.CouponHandler
	Partner     *handler.PartnerHandler
	Shipping    *handler.ShippingHandler
	Cart        *handler.CartHandler
	Checkout    *handler.CheckoutHandler
	Order       *handler.OrderHandler
	Integration *handler.IntegrationHandler
	Webhook     *handler.StripeWebhookHandler

	AdminAuth     gin.HandlerFunc
	AuthRateLimit gin.HandlerFunc
}

// Mount registers probes at the root and the API under /api/v1
func Mount(engine *gin.Engine, h Handlers) *Router {
	engine.GET("/health", h.Health.Health)
	engine.GET("/ready", h.Health.Ready)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(
		StoreRoutes(h),
		AuthRoutes(h),
		AdminRoutes(h),
		WebhookRoutes(h),
	)
	r.Setup()
	return r
}

// StoreRoutes are the public storefront routes
func StoreRoutes(h Handlers) *DomainGroup {
	store := NewDomainGroup("store", "/store")

	store.GET("/products", h.Product.ListPublic)
	store.GET("/products/:slug", h.Product.GetBySlug)
	store.GET("/categories", h.Category.ListPublic)
	store.GET("/shipping-rates", h.Shipping.ListActive)
	store.POST("/shipping-rates/:id/quote", h.Shipping.Quote)
	store.POST("/coupons/validate", h.Coupon.Validate)

	carts := store.Group("carts", "/carts")
	carts.POST("", h.Cart.Create)
	carts.GET("/:id", h.Cart.Get)
	carts.DELETE("/:id", h.Cart.Clear)
	carts.POST("/:id/items", h.Cart.AddItem)
	carts.PUT("/:id/items/:product_id", h.Cart.UpdateItem)
	carts.DELETE("/:id/items/:product_id", h.Cart.RemoveItem)
	carts.POST("/:id/coupon", h.Cart.ApplyCoupon)
	carts.DELETE("/:id/coupon", h.Cart.RemoveCoupon)

	store.POST("/checkout", h.Checkout.PlaceOrder)
	store.GET("/orders/lookup", h.Checkout.Lookup)
	return store
}

// AuthRoutes are the dashboard login routes
func AuthRoutes(h Handlers) *DomainGroup {
	authRoutes := NewDomainGroup("auth", "/auth")

	public := authRoutes.Group("auth-public", "").Use(h.AuthRateLimit)
	public.POST("/login", h.Auth.Login)
	public.POST("/refresh", h.Auth.Refresh)

	session := authRoutes.Group("auth-session", "").Use(h.AdminAuth)
	session.GET("/me", h.Auth.Me)
	session.PUT("/password", h.Auth.ChangePassword)
	return authRoutes
}

// AdminRoutes are the merchant dashboard routes; all require a token
func AdminRoutes(h Handlers) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(h.AdminAuth)

	products := admin.Group("products", "/products")
	products.GET("", h.Product.List)
	products.POST("", h.Product.Create)
	products.POST("/import", h.Import.Import)
	products.GET("/:id", h.Product.GetByID)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)
	products.PUT("/:id/price", h.Product.UpdatePrice)
	products.POST("/:id/stock", h.Product.AdjustStock)
	products.POST("/:id/activate", h.Product.Activate)
	products.POST("/:id/deactivate", h.Product.Deactivate)
	products.POST("/:id/image-upload-url", h.Product.CreateImageUploadURL)
	products.PUT("/:id/image", h.Product.AttachImage)

	categories := admin.Group("categories", "/categories")
	categories.GET("", h.Category.List)
	categories.POST("", h.Category.Create)
	categories.GET("/:id", h.Category.GetByID)
	categories.PUT("/:id", h.Category.Update)
	categories.DELETE("/:id", h.Category.Delete)
	categories.POST("/:id/activate", h.Category.Activate)
	categories.POST("/:id/deactivate", h.Category.Deactivate)

	coupons := admin.Group("coupons", "/coupons")
	coupons.GET("", h.Coupon.List)
	coupons.POST("", h.Coupon.Create)
	coupons.GET("/:id", h.Coupon.GetByID)
	coupons.PUT("/:id", h.Coupon.Update)
	coupons.DELETE("/:id", h.Coupon.Delete)
	coupons.POST("/:id/activate", h.Coupon.Activate)
	coupons.POST("/:id/deactivate", h.Coupon.Deactivate)

	partners := admin.Group("partners", "/partners")
	partners.GET("", h.Partner.List)
	partners.POST("", h.Partner.Create)
	partners.GET("/:id", h.Partner.GetByID)
	partners.PUT("/:id", h.Partner.Update)
	partners.DELETE("/:id", h.Partner.Delete)
	partners.POST("/:id/activate", h.Partner.Activate)
	partners.POST("/:id/deactivate", h.Partner.Deactivate)

	rates := admin.Group("shipping-rates", "/shipping-rates")
	rates.GET("", h.Shipping.List)
	rates.POST("", h.Shipping.Create)
	rates.GET("/:id", h.Shipping.GetByID)
	rates.PUT("/:id", h.Shipping.Update)
	rates.DELETE("/:id", h.Shipping.Delete)
	rates.POST("/:id/activate", h.Shipping.Activate)
	rates.POST("/:id/deactivate", h.Shipping.Deactivate)

	orders := admin.Group("orders", "/orders")
	orders.GET("", h.Order.List)
	orders.GET("/stats", h.Order.Stats)
	orders.GET("/:id", h.Order.GetByID)
	orders.PUT("/:id/status", h.Order.UpdateStatus)
	orders.POST("/:id/cancel", h.Order.Cancel)
	orders.PUT("/:id/notes", h.Order.UpdateNotes)

	integrations := admin.Group("integrations", "/integrations")
	integrations.GET("", h.Integration.Get)
	integrations.PUT("", h.Integration.Update)
	integrations.POST("/webhook/test", h.Integration.TestWebhook)
	integrations.POST("/chatwoot/test", h.Integration.TestChatwoot)

	return admin
}

// WebhookRoutes receive provider callbacks
func WebhookRoutes(h Handlers) *DomainGroup {
	webhooks := NewDomainGroup("webhooks", "/webhooks")
	webhooks.POST("/stripe", h.Webhook.Handle)
	return webhooks
}
