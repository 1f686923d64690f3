package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/integration"
	"github.com/storefront/backend/internal/domain/partner"
	"github.com/storefront/backend/internal/domain/promotion"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormIntegrationSettingsRepository(t *testing.T) {
	repo := NewGormIntegrationSettingsRepository(newSQLiteDB(t))
	ctx := context.Background()

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, integration.SettingsID, settings.ID)
	assert.False(t, settings.WebhookEnabled)

	require.NoError(t, settings.UpdateWebhook(integration.WebhookConfig{
		Enabled: true,
		URL:     "https://hooks.example.com/orders",
		Secret:  "s3cret-value",
		Events:  []string{"order.created"},
	}))
	require.NoError(t, repo.Save(ctx, settings))

	reloaded, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded.WebhookEnabled)
	assert.Equal(t, "s3cret-value", reloaded.Webhook().Secret)

	// a second save updates the same row
	require.NoError(t, reloaded.UpdateWebhook(integration.WebhookConfig{URL: "https://hooks.example.com/orders"}))
	require.NoError(t, repo.Save(ctx, reloaded))
	again, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, again.WebhookEnabled)
}

func TestGormCouponRepository_SaveKeepsUsage(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormCouponRepository(db)
	ctx := context.Background()

	coupon, err := promotion.NewCoupon("spring-25", promotion.DiscountTypeFixed, decimal.NewFromInt(25))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, coupon))

	require.NoError(t, db.Model(&promotion.Coupon{}).Where("id = ?", coupon.ID).Update("usage_count", 4).Error)

	require.NoError(t, coupon.Deactivate())
	require.NoError(t, repo.Save(ctx, coupon))

	stored, err := repo.FindByCode(ctx, " Spring-25 ")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.UsageCount)
	assert.False(t, stored.Active)

	exists, err := repo.ExistsByCode(ctx, "SPRING-25")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormPartnerRepository(t *testing.T) {
	repo := NewGormPartnerRepository(newSQLiteDB(t))
	ctx := context.Background()

	p, err := partner.NewPartner("Nadia Blogs", "nadia@example.com", "nadia15", decimal.NewFromInt(15))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByCouponCode(ctx, "NADIA15")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	filter := shared.DefaultFilter()
	filter.Search = "blogs"
	partners, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, partners, 1)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormShippingRateRepository_Ordering(t *testing.T) {
	repo := NewGormShippingRateRepository(newSQLiteDB(t))
	ctx := context.Background()

	for _, tc := range []struct {
		name  string
		price int64
		sort  int
	}{
		{"Express", 15, 1},
		{"Standard", 5, 1},
		{"Pickup", 0, 0},
	} {
		rate, err := shipping.NewRate(tc.name, decimal.NewFromInt(tc.price))
		require.NoError(t, err)
		rate.SetSortOrder(tc.sort)
		require.NoError(t, repo.Save(ctx, rate))
	}

	rates, err := repo.FindAll(ctx, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, rates, 3)
	assert.Equal(t, []string{"Pickup", "Standard", "Express"}, []string{rates[0].Name, rates[1].Name, rates[2].Name})
}

func TestGormAdminUserRepository(t *testing.T) {
	repo := NewGormAdminUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	user, err := identity.NewAdminUser("owner@shop.test", "Owner", "correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, user))

	found, err := repo.FindByEmail(ctx, "  OWNER@shop.test ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.True(t, found.VerifyPassword("correct-horse-battery"))
}
