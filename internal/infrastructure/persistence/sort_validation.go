package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

var ProductSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"name":           true,
	"slug":           true,
	"sku":            true,
	"price":          true,
	"stock_quantity": true,
}

var CategorySortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"sort_order": true,
}

var CouponSortFields = map[string]bool{
	"created_at":  true,
	"code":        true,
	"value":       true,
	"usage_count": true,
	"expires_at":  true,
}

var PartnerSortFields = map[string]bool{
	"created_at":        true,
	"name":              true,
	"coupon_code":       true,
	"order_count":       true,
	"sales_amount":      true,
	"commission_amount": true,
}

var ShippingRateSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"price":      true,
	"sort_order": true,
}

var OrderSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"customer_name":  true,
	"customer_email": true,
	"status":         true,
	"total":          true,
}
