package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, name string, price string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(name, "", decimal.RequireFromString(price))
	require.NoError(t, err)
	p.ClearDomainEvents()
	return p
}

func setupProductService() (*ProductService, *MockProductRepository, *MockCategoryRepository, *MockImageStorage, *MockEventPublisher) {
	productRepo := new(MockProductRepository)
	categoryRepo := new(MockCategoryRepository)
	storage := new(MockImageStorage)
	events := new(MockEventPublisher)
	svc := NewProductService(productRepo, categoryRepo, storage, events, nil)
	return svc, productRepo, categoryRepo, storage, events
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product with stock and publishes created event", func(t *testing.T) {
		svc, productRepo, categoryRepo, _, events := setupProductService()
		categoryID := uuid.New()
		compareAt := decimal.NewFromInt(40)

		productRepo.On("ExistsBySlug", ctx, "linen-shirt").Return(false, nil)
		productRepo.On("ExistsBySKU", ctx, "LS-001").Return(false, nil)
		categoryRepo.On("FindByID", ctx, categoryID).Return(&catalog.Category{}, nil)
		productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)
		productRepo.On("AdjustStock", ctx, mock.AnythingOfType("uuid.UUID"), 12).Return(12, nil)
		events.On("Publish", ctx, mock.MatchedBy(func(evts []shared.DomainEvent) bool {
			return len(evts) == 1 && evts[0].EventType() == catalog.EventTypeProductCreated
		})).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			Name:           "Linen Shirt",
			SKU:            "ls-001",
			Description:    "Breathable",
			Price:          decimal.NewFromInt(30),
			CompareAtPrice: &compareAt,
			StockQuantity:  12,
			CategoryID:     &categoryID,
		})

		require.NoError(t, err)
		assert.Equal(t, "linen-shirt", resp.Slug)
		assert.Equal(t, "LS-001", resp.SKU)
		assert.Equal(t, 12, resp.StockQuantity)
		assert.True(t, resp.OnSale)
		assert.True(t, resp.Active)
		assert.Equal(t, &categoryID, resp.CategoryID)
		productRepo.AssertExpectations(t)
		events.AssertExpectations(t)
	})

	t.Run("rejects duplicate slug", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		productRepo.On("ExistsBySlug", ctx, "mug").Return(true, nil)

		_, err := svc.Create(ctx, CreateProductRequest{Name: "Mug", Price: decimal.NewFromInt(8)})

		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		svc, productRepo, categoryRepo, _, _ := setupProductService()
		categoryID := uuid.New()
		productRepo.On("ExistsBySlug", ctx, "mug").Return(false, nil)
		categoryRepo.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateProductRequest{Name: "Mug", Price: decimal.NewFromInt(8), CategoryID: &categoryID})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CATEGORY", domainErr.Code)
	})

	t.Run("rejects compare-at price below price", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		compareAt := decimal.NewFromInt(5)
		productRepo.On("ExistsBySlug", ctx, "mug").Return(false, nil)

		_, err := svc.Create(ctx, CreateProductRequest{Name: "Mug", Price: decimal.NewFromInt(8), CompareAtPrice: &compareAt})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_COMPARE_AT_PRICE", domainErr.Code)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		svc, _, _, _, _ := setupProductService()

		_, err := svc.Create(ctx, CreateProductRequest{Name: "Mug", Price: decimal.Zero})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PRICE", domainErr.Code)
	})
}

func TestProductService_GetBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("hides inactive products from the storefront", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		require.NoError(t, product.Deactivate())
		productRepo.On("FindBySlug", ctx, "mug").Return(product, nil)

		_, err := svc.GetBySlug(ctx, " Mug ", true)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		resp, err := svc.GetBySlug(ctx, "mug", false)
		require.NoError(t, err)
		assert.False(t, resp.Active)
	})

	t.Run("resolves uploaded image through storage", func(t *testing.T) {
		svc, productRepo, _, storage, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		require.NoError(t, product.SetImage("products/x/a.png", ""))
		productRepo.On("FindBySlug", ctx, "mug").Return(product, nil)
		storage.On("ImageURL", ctx, "products/x/a.png").Return("https://cdn.example.com/products/x/a.png", nil)

		resp, err := svc.GetBySlug(ctx, "mug", true)

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/products/x/a.png", resp.ImageURL)
	})

	t.Run("falls back to stored url when storage fails", func(t *testing.T) {
		svc, productRepo, _, storage, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		product.ImageKey = "products/x/a.png"
		product.ImageURL = "https://legacy.example.com/mug.png"
		productRepo.On("FindBySlug", ctx, "mug").Return(product, nil)
		storage.On("ImageURL", ctx, "products/x/a.png").Return("", errors.New("s3 down"))

		resp, err := svc.GetBySlug(ctx, "mug", true)

		require.NoError(t, err)
		assert.Equal(t, "https://legacy.example.com/mug.png", resp.ImageURL)
	})
}

func TestProductService_ListPublic(t *testing.T) {
	ctx := context.Background()

	t.Run("forces the active filter and maps price range", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		inactive := false
		minPrice := decimal.NewFromInt(10)
		products := []catalog.Product{*newTestProduct(t, "Mug", "12")}

		matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["active"] == true &&
				f.Filters["min_price"].(decimal.Decimal).Equal(minPrice) &&
				f.Page == 2 && f.PageSize == 5 && f.Search == "mug"
		})
		productRepo.On("FindAll", ctx, matchFilter).Return(products, nil)
		productRepo.On("Count", ctx, matchFilter).Return(int64(6), nil)

		page, err := svc.ListPublic(ctx, ProductListFilter{
			Search:   " mug ",
			Active:   &inactive,
			MinPrice: &minPrice,
			Page:     2,
			PageSize: 5,
		})

		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(6), page.Total)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("unknown category slug yields an empty page", func(t *testing.T) {
		svc, productRepo, categoryRepo, _, _ := setupProductService()
		categoryRepo.On("FindBySlug", ctx, "nope").Return(nil, shared.ErrNotFound)

		page, err := svc.ListPublic(ctx, ProductListFilter{CategorySlug: "nope"})

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		productRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("category slug resolves to category filter", func(t *testing.T) {
		svc, productRepo, categoryRepo, _, _ := setupProductService()
		category, err := catalog.NewCategory("Mugs", "")
		require.NoError(t, err)
		categoryRepo.On("FindBySlug", ctx, "mugs").Return(category, nil)

		matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["category_id"] == category.ID
		})
		productRepo.On("FindAll", ctx, matchFilter).Return([]catalog.Product{}, nil)
		productRepo.On("Count", ctx, matchFilter).Return(int64(0), nil)

		_, err = svc.ListPublic(ctx, ProductListFilter{CategorySlug: "mugs"})
		require.NoError(t, err)
		productRepo.AssertExpectations(t)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		product.Description = "Ceramic"
		newName := "Big Mug"
		featured := true
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{Name: &newName, Featured: &featured})

		require.NoError(t, err)
		assert.Equal(t, "Big Mug", resp.Name)
		assert.Equal(t, "Ceramic", resp.Description)
		assert.Equal(t, "mug", resp.Slug)
		assert.True(t, resp.Featured)
	})

	t.Run("clears SKU and category", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		require.NoError(t, product.SetSKU("M-1"))
		categoryID := uuid.New()
		product.SetCategory(&categoryID)
		empty := ""
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{SKU: &empty, ClearCategory: true})

		require.NoError(t, err)
		assert.Empty(t, resp.SKU)
		assert.Nil(t, resp.CategoryID)
		productRepo.AssertNotCalled(t, "ExistsBySKU", mock.Anything, mock.Anything)
	})

	t.Run("rejects taken slug", func(t *testing.T) {
		svc, productRepo, _, _, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		slug := "cup"
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("ExistsBySlug", ctx, "cup").Return(true, nil)

		_, err := svc.Update(ctx, product.ID, UpdateProductRequest{Slug: &slug})

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("applies delta and publishes stock change", func(t *testing.T) {
		svc, productRepo, _, _, events := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		productRepo.On("AdjustStock", ctx, product.ID, -3).Return(7, nil)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		events.On("Publish", ctx, mock.MatchedBy(func(evts []shared.DomainEvent) bool {
			if len(evts) != 1 {
				return false
			}
			e, ok := evts[0].(*catalog.ProductStockChangedEvent)
			return ok && e.OldQuantity == 10 && e.NewQuantity == 7
		})).Return(nil)

		resp, err := svc.AdjustStock(ctx, product.ID, AdjustStockRequest{Delta: -3})

		require.NoError(t, err)
		assert.Equal(t, 7, resp.StockQuantity)
		events.AssertExpectations(t)
	})

	t.Run("cannot go negative", func(t *testing.T) {
		svc, productRepo, _, _, events := setupProductService()
		id := uuid.New()
		productRepo.On("AdjustStock", ctx, id, -5).Return(0, shared.ErrInsufficientStock)

		_, err := svc.AdjustStock(ctx, id, AdjustStockRequest{Delta: -5})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("publish failure does not fail the adjustment", func(t *testing.T) {
		svc, productRepo, _, _, events := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		productRepo.On("AdjustStock", ctx, product.ID, 2).Return(2, nil)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		events.On("Publish", ctx, mock.Anything).Return(errors.New("bus closed"))

		resp, err := svc.AdjustStock(ctx, product.ID, AdjustStockRequest{Delta: 2})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.StockQuantity)
	})
}

func TestProductService_ActivateDeactivate(t *testing.T) {
	ctx := context.Background()
	svc, productRepo, _, _, _ := setupProductService()
	product := newTestProduct(t, "Mug", "8")
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	productRepo.On("Save", ctx, product).Return(nil)

	_, err := svc.Activate(ctx, product.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_ACTIVE", domainErr.Code)

	resp, err := svc.Deactivate(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, productRepo, _, storage, _ := setupProductService()
	product := newTestProduct(t, "Mug", "8")
	product.ImageKey = "products/" + product.ID.String() + "/a.png"
	productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
	productRepo.On("Delete", ctx, product.ID).Return(nil)
	storage.On("DeleteObject", ctx, product.ImageKey).Return(errors.New("s3 down"))

	require.NoError(t, svc.Delete(ctx, product.ID))
	storage.AssertExpectations(t)
}

func TestProductService_Images(t *testing.T) {
	ctx := context.Background()

	t.Run("generates upload url under the product prefix", func(t *testing.T) {
		svc, productRepo, _, storage, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		expires := time.Now().Add(15 * time.Minute)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		storage.On("GenerateUploadURL", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "products/"+product.ID.String()+"/") && strings.HasSuffix(key, ".png")
		}), "image/png").Return("https://s3.example.com/put", expires, nil)

		resp, err := svc.CreateImageUploadURL(ctx, product.ID, ImageUploadRequest{ContentType: "image/png"})

		require.NoError(t, err)
		assert.Equal(t, "https://s3.example.com/put", resp.UploadURL)
		assert.Equal(t, expires, resp.ExpiresAt)
		assert.True(t, strings.HasPrefix(resp.Key, "products/"+product.ID.String()+"/"))
	})

	t.Run("rejects unsupported content type", func(t *testing.T) {
		svc, _, _, _, _ := setupProductService()

		_, err := svc.CreateImageUploadURL(ctx, uuid.New(), ImageUploadRequest{ContentType: "image/svg+xml"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CONTENT_TYPE", domainErr.Code)
	})

	t.Run("attaches uploaded image and removes the previous one", func(t *testing.T) {
		svc, productRepo, _, storage, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		prefix := "products/" + product.ID.String() + "/"
		product.ImageKey = prefix + "old.png"
		newKey := prefix + "new.png"

		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)
		storage.On("ObjectExists", ctx, newKey).Return(true, nil)
		storage.On("DeleteObject", ctx, prefix+"old.png").Return(nil)
		storage.On("ImageURL", ctx, newKey).Return("https://cdn.example.com/"+newKey, nil)

		resp, err := svc.AttachImage(ctx, product.ID, AttachImageRequest{Key: newKey})

		require.NoError(t, err)
		assert.Equal(t, newKey, resp.ImageKey)
		assert.Equal(t, "https://cdn.example.com/"+newKey, resp.ImageURL)
		storage.AssertExpectations(t)
	})

	t.Run("rejects keys of other products", func(t *testing.T) {
		svc, _, _, _, _ := setupProductService()

		_, err := svc.AttachImage(ctx, uuid.New(), AttachImageRequest{Key: "products/" + uuid.NewString() + "/a.png"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IMAGE_KEY", domainErr.Code)
	})

	t.Run("rejects keys that were never uploaded", func(t *testing.T) {
		svc, productRepo, _, storage, _ := setupProductService()
		product := newTestProduct(t, "Mug", "8")
		key := "products/" + product.ID.String() + "/a.png"
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		storage.On("ObjectExists", ctx, key).Return(false, nil)

		_, err := svc.AttachImage(ctx, product.ID, AttachImageRequest{Key: key})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "IMAGE_NOT_UPLOADED", domainErr.Code)
	})
}
