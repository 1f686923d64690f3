package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	orderapp "github.com/storefront/backend/internal/application/order"
	shippingapp "github.com/storefront/backend/internal/application/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedCatalog creates one category, one product with five in stock and a
// shipping rate that is free from 50.
func seedCatalog(t *testing.T, srv *testServer) (catalogapp.ProductResponse, shippingapp.RateResponse) {
	t.Helper()

	var category catalogapp.CategoryResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/admin/categories", gin.H{"name": "Mugs"}, http.StatusCreated, &category)
	require.Equal(t, "mugs", category.Slug)

	var product catalogapp.ProductResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/admin/products", gin.H{
		"name":           "Blue Mug",
		"price":          "12.50",
		"stock_quantity": 5,
		"category_id":    category.ID,
	}, http.StatusCreated, &product)
	require.Equal(t, "blue-mug", product.Slug)

	var rate shippingapp.RateResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/admin/shipping-rates", gin.H{
		"name":              "Standard",
		"price":             "4.00",
		"free_above_amount": "50",
	}, http.StatusCreated, &rate)
	return product, rate
}

func checkoutBody(cartID, rateID any) gin.H {
	return gin.H{
		"cart_id": cartID,
		"customer": gin.H{
			"name":  "Ada Lovelace",
			"email": "ada@example.com",
		},
		"shipping_address": gin.H{
			"line1":       "12 Analytical Row",
			"city":        "London",
			"postal_code": "N1 9GU",
			"country":     "GB",
		},
		"shipping_rate_id": rateID,
	}
}

func TestStorefront_CartToOrder(t *testing.T) {
	srv := newTestServer(t)
	product, rate := seedCatalog(t, srv)

	t.Run("browse", func(t *testing.T) {
		var products []catalogapp.ProductResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/store/products?category=mugs", nil, http.StatusOK, &products)
		require.Len(t, products, 1)
		assert.Equal(t, product.ID, products[0].ID)

		var detail catalogapp.ProductResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/store/products/blue-mug", nil, http.StatusOK, &detail)
		assert.True(t, detail.InStock)

		var rates []shippingapp.RateResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/store/shipping-rates", nil, http.StatusOK, &rates)
		assert.Len(t, rates, 1)
	})

	var cart cartapp.CartResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/store/carts", nil, http.StatusCreated, &cart)
	srv.mustDo(t, http.MethodPost, "/api/v1/store/carts/"+cart.ID.String()+"/items", gin.H{
		"product_id": product.ID,
		"quantity":   2,
	}, http.StatusOK, &cart)
	require.Len(t, cart.Items, 1)
	assert.True(t, dec("25").Equal(cart.Subtotal), cart.Subtotal.String())

	var placed orderapp.CheckoutResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/store/checkout", checkoutBody(cart.ID, rate.ID), http.StatusCreated, &placed)
	assert.False(t, placed.PaymentRequired)
	assert.Equal(t, "pending", placed.Order.Status)
	assert.True(t, dec("29").Equal(placed.Order.Total), placed.Order.Total.String())

	t.Run("cart is discarded after checkout", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/store/carts/"+cart.ID.String(), nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "CART_NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("stock is decremented", func(t *testing.T) {
		var got catalogapp.ProductResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/admin/products/"+product.ID.String(), nil, http.StatusOK, &got)
		assert.Equal(t, 3, got.StockQuantity)
	})

	t.Run("lookup", func(t *testing.T) {
		query := url.Values{"number": {placed.Order.OrderNumber}, "email": {"ADA@example.com"}}
		var public orderapp.PublicOrderResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/store/orders/lookup?"+query.Encode(), nil, http.StatusOK, &public)
		assert.Equal(t, placed.Order.OrderNumber, public.OrderNumber)

		query.Set("email", "someone@example.com")
		w := srv.do(t, http.MethodGet, "/api/v1/store/orders/lookup?"+query.Encode(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	orderPath := "/api/v1/admin/orders/" + placed.Order.ID.String()

	t.Run("invalid transition", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, orderPath+"/status", gin.H{"status": "delivered"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "INVALID_STATE", decodeError(t, w).Code)
	})

	t.Run("cancel restocks", func(t *testing.T) {
		var cancelled orderapp.OrderResponse
		srv.mustDo(t, http.MethodPost, orderPath+"/cancel", gin.H{"reason": "customer request"}, http.StatusOK, &cancelled)
		assert.Equal(t, "cancelled", cancelled.Status)

		var got catalogapp.ProductResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/admin/products/"+product.ID.String(), nil, http.StatusOK, &got)
		assert.Equal(t, 5, got.StockQuantity)
	})

	t.Run("stats", func(t *testing.T) {
		var stats orderapp.StatsResponse
		srv.mustDo(t, http.MethodGet, "/api/v1/admin/orders/stats", nil, http.StatusOK, &stats)
	})
}

func TestStorefront_CheckoutRejectsOverselling(t *testing.T) {
	srv := newTestServer(t)
	product, rate := seedCatalog(t, srv)

	body := checkoutBody(nil, rate.ID)
	body["items"] = []gin.H{{"product_id": product.ID, "quantity": 6}}

	w := srv.do(t, http.MethodPost, "/api/v1/store/checkout", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var got catalogapp.ProductResponse
	srv.mustDo(t, http.MethodGet, "/api/v1/admin/products/"+product.ID.String(), nil, http.StatusOK, &got)
	assert.Equal(t, 5, got.StockQuantity)
}

func TestStorefront_InactiveProductIsHidden(t *testing.T) {
	srv := newTestServer(t)
	product, _ := seedCatalog(t, srv)

	srv.mustDo(t, http.MethodPost, "/api/v1/admin/products/"+product.ID.String()+"/deactivate", nil, http.StatusOK, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/store/products/blue-mug", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var products []catalogapp.ProductResponse
	srv.mustDo(t, http.MethodGet, "/api/v1/store/products", nil, http.StatusOK, &products)
	assert.Empty(t, products)
}

func TestStorefront_Coupons(t *testing.T) {
	srv := newTestServer(t)
	product, _ := seedCatalog(t, srv)

	srv.mustDo(t, http.MethodPost, "/api/v1/admin/coupons", gin.H{
		"code":             "SAVE10",
		"type":             "percent",
		"value":            "10",
		"min_order_amount": "20",
	}, http.StatusCreated, nil)

	t.Run("validate", func(t *testing.T) {
		var discount struct {
			Amount decimal.Decimal `json:"amount"`
		}
		srv.mustDo(t, http.MethodPost, "/api/v1/store/coupons/validate", gin.H{
			"code":     "save10",
			"subtotal": "40",
		}, http.StatusOK, &discount)
		assert.True(t, dec("4").Equal(discount.Amount), discount.Amount.String())
	})

	t.Run("unknown code", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/store/coupons/validate", gin.H{"code": "NOPE", "subtotal": "40"})
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "COUPON_NOT_FOUND", decodeError(t, w).Code)
	})

	t.Run("minimum not met", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/store/coupons/validate", gin.H{"code": "SAVE10", "subtotal": "5"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "COUPON_MIN_ORDER_NOT_MET", decodeError(t, w).Code)
	})

	t.Run("cart discount", func(t *testing.T) {
		var cart cartapp.CartResponse
		srv.mustDo(t, http.MethodPost, "/api/v1/store/carts", nil, http.StatusCreated, &cart)
		cartPath := "/api/v1/store/carts/" + cart.ID.String()
		srv.mustDo(t, http.MethodPost, cartPath+"/items", gin.H{"product_id": product.ID, "quantity": 2}, http.StatusOK, &cart)
		srv.mustDo(t, http.MethodPost, cartPath+"/coupon", gin.H{"code": "SAVE10"}, http.StatusOK, &cart)

		assert.Equal(t, "SAVE10", cart.CouponCode)
		assert.True(t, dec("2.5").Equal(cart.DiscountAmount), cart.DiscountAmount.String())
		assert.True(t, dec("22.5").Equal(cart.Total), cart.Total.String())

		srv.mustDo(t, http.MethodDelete, cartPath+"/coupon", nil, http.StatusOK, &cart)
		assert.Empty(t, cart.CouponCode)
		assert.True(t, dec("25").Equal(cart.Total))
	})
}

func TestStorefront_CartItems(t *testing.T) {
	srv := newTestServer(t)
	product, _ := seedCatalog(t, srv)

	var cart cartapp.CartResponse
	srv.mustDo(t, http.MethodPost, "/api/v1/store/carts", nil, http.StatusCreated, &cart)
	cartPath := "/api/v1/store/carts/" + cart.ID.String()
	itemPath := cartPath + "/items/" + product.ID.String()

	srv.mustDo(t, http.MethodPost, cartPath+"/items", gin.H{"product_id": product.ID, "quantity": 1}, http.StatusOK, &cart)
	srv.mustDo(t, http.MethodPost, cartPath+"/items", gin.H{"product_id": product.ID, "quantity": 1}, http.StatusOK, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	srv.mustDo(t, http.MethodPut, itemPath, gin.H{"quantity": 4}, http.StatusOK, &cart)
	assert.Equal(t, 4, cart.ItemCount)

	srv.mustDo(t, http.MethodDelete, itemPath, nil, http.StatusOK, &cart)
	assert.Empty(t, cart.Items)

	srv.mustDo(t, http.MethodPost, cartPath+"/items", gin.H{"product_id": product.ID, "quantity": 1}, http.StatusOK, &cart)
	srv.mustDo(t, http.MethodDelete, cartPath, nil, http.StatusOK, &cart)
	assert.Empty(t, cart.Items)

	t.Run("invalid quantity", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, cartPath+"/items", gin.H{"product_id": product.ID, "quantity": 0})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
	})
}
