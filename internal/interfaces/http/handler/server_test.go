package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	partnerapp "github.com/storefront/backend/internal/application/partner"
	promotionapp "github.com/storefront/backend/internal/application/promotion"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail    = "owner@example.com"
	testAdminPassword = "correct-horse"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&partner.Partner{},
		&promotion.Coupon{},
		&shipping.Rate{},
		&order.Order{},
		&order.Item{},
		&integration.Settings{},
		&identity.AdminUser{},
	))
	return db
}

// testServer wires real services over sqlite and an in-memory cart store
type testServer struct {
	engine *gin.Engine
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	db := newSQLiteDB(t)

	products := persistence.NewGormProductRepository(db)
	categories := persistence.NewGormCategoryRepository(db)
	coupons := persistence.NewGormCouponRepository(db)
	partners := persistence.NewGormPartnerRepository(db)
	rates := persistence.NewGormShippingRateRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	admins := persistence.NewGormAdminUserRepository(db)

	carts := cache.NewInMemoryCartStore(time.Hour)
	t.Cleanup(func() { _ = carts.Close() })

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-0123456789abcdef",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "storefront-test",
	})
	authService := identityapp.NewAuthService(admins, jwtService, log)
	created, err := authService.EnsureAdmin(t.Context(), config.AdminConfig{
		Email:    testAdminEmail,
		Password: testAdminPassword,
		Name:     "Owner",
	})
	require.NoError(t, err)
	require.True(t, created)

	productService := catalogapp.NewProductService(products, categories, nil, nil, log)
	categoryService := catalogapp.NewCategoryService(categories, products)
	couponService := promotionapp.NewCouponService(coupons, partners)
	partnerService := partnerapp.NewPartnerService(partners)
	rateService := shippingapp.NewRateService(rates)
	cartService := cartapp.NewCartService(carts, products, couponService.Validator(), productService.Images(), valueobject.USD, log)
	orderService := orderapp.NewOrderService(orders, nil, valueobject.USD, log)
	checkoutService := orderapp.NewCheckoutService(orderapp.CheckoutServiceConfig{
		Orders:    orders,
		Products:  products,
		Rates:     rates,
		Validator: couponService.Validator(),
		Carts:     cartService,
		Config:    orderapp.CheckoutConfig{Currency: valueobject.USD, OrderNumberPrefix: "SF"},
		Logger:    log,
	})
	webhookService := orderapp.NewStripeWebhookService(orderapp.StripeWebhookServiceConfig{
		Orders: orders,
		Logger: log,
	})

	authHandler := NewAuthHandler(authService)
	productHandler := NewProductHandler(productService)
	importHandler := NewProductImportHandler(catalogapp.NewProductImportService(productService, products, categories, log))
	categoryHandler := NewCategoryHandler(categoryService)
	couponHandler := NewCouponHandler(couponService)
	partnerHandler := NewPartnerHandler(partnerService)
	shippingHandler := NewShippingHandler(rateService)
	cartHandler := NewCartHandler(cartService)
	checkoutHandler := NewCheckoutHandler(checkoutService, orderService)
	orderHandler := NewOrderHandler(orderService)
	webhookHandler := NewStripeWebhookHandler(webhookService)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")

	store := api.Group("/store")
	store.GET("/products", productHandler.ListPublic)
	store.GET("/products/:slug", productHandler.GetBySlug)
	store.GET("/categories", categoryHandler.ListPublic)
	store.GET("/shipping-rates", shippingHandler.ListActive)
	store.POST("/shipping-rates/:id/quote", shippingHandler.Quote)
	store.POST("/coupons/validate", couponHandler.Validate)
	store.POST("/carts", cartHandler.Create)
	store.GET("/carts/:id", cartHandler.Get)
	store.DELETE("/carts/:id", cartHandler.Clear)
	store.POST("/carts/:id/items", cartHandler.AddItem)
	store.PUT("/carts/:id/items/:product_id", cartHandler.UpdateItem)
	store.DELETE("/carts/:id/items/:product_id", cartHandler.RemoveItem)
	store.POST("/carts/:id/coupon", cartHandler.ApplyCoupon)
	store.DELETE("/carts/:id/coupon", cartHandler.RemoveCoupon)
	store.POST("/checkout", checkoutHandler.PlaceOrder)
	store.GET("/orders/lookup", checkoutHandler.Lookup)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.GET("/me", middleware.JWTAuth(jwtService, log), authHandler.Me)
	authGroup.PUT("/password", middleware.JWTAuth(jwtService, log), authHandler.ChangePassword)

	admin := api.Group("/admin", middleware.JWTAuth(jwtService, log))
	admin.POST("/categories", categoryHandler.Create)
	admin.GET("/categories", categoryHandler.List)
	admin.DELETE("/categories/:id", categoryHandler.Delete)
	admin.POST("/products", productHandler.Create)
	admin.POST("/products/import", importHandler.Import)
	admin.GET("/products", productHandler.List)
	admin.GET("/products/:id", productHandler.GetByID)
	admin.POST("/products/:id/deactivate", productHandler.Deactivate)
	admin.POST("/products/:id/stock", productHandler.AdjustStock)
	admin.POST("/products/:id/image-upload-url", productHandler.CreateImageUploadURL)
	admin.POST("/coupons", couponHandler.Create)
	admin.GET("/coupons", couponHandler.List)
	admin.POST("/partners", partnerHandler.Create)
	admin.GET("/partners/:id", partnerHandler.GetByID)
	admin.POST("/shipping-rates", shippingHandler.Create)
	admin.GET("/orders", orderHandler.List)
	admin.GET("/orders/stats", orderHandler.Stats)
	admin.GET("/orders/:id", orderHandler.GetByID)
	admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	admin.POST("/orders/:id/cancel", orderHandler.Cancel)
	admin.PUT("/orders/:id/notes", orderHandler.UpdateNotes)

	api.POST("/webhooks/stripe", webhookHandler.Handle)

	srv := &testServer{engine: engine}
	var login identityapp.TokenResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, http.StatusOK, &login)
	srv.token = login.AccessToken
	return srv
}

// do sends a request; admin routes get the bearer token
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// mustDo asserts the status and decodes the envelope data into out
func (s *testServer) mustDo(t *testing.T, method, path string, body any, status int, out any) {
	t.Helper()
	w := s.do(t, method, path, body)
	require.Equal(t, status, w.Code, w.Body.String())
	if out == nil {
		return
	}
	envelope := struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}
