package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		req      CreateCategoryRequest
		exists   bool
		wantSlug string
		wantCode string
	}{
		{
			name:     "derives slug from name",
			req:      CreateCategoryRequest{Name: "Home & Kitchen", SortOrder: 3},
			wantSlug: "home-kitchen",
		},
		{
			name:     "keeps explicit slug",
			req:      CreateCategoryRequest{Name: "Mugs", Slug: "coffee-mugs"},
			wantSlug: "coffee-mugs",
		},
		{
			name:     "rejects taken slug",
			req:      CreateCategoryRequest{Name: "Mugs"},
			exists:   true,
			wantCode: "ALREADY_EXISTS",
		},
		{
			name:     "rejects invalid slug",
			req:      CreateCategoryRequest{Name: "Mugs", Slug: "Bad Slug"},
			wantCode: "INVALID_SLUG",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categoryRepo := new(MockCategoryRepository)
			svc := NewCategoryService(categoryRepo, new(MockProductRepository))
			categoryRepo.On("ExistsBySlug", ctx, mock.Anything).Return(tt.exists, nil)
			categoryRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

			resp, err := svc.Create(ctx, tt.req)

			if tt.wantCode != "" {
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.wantCode, domainErr.Code)
				categoryRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, resp.Slug)
			assert.Equal(t, tt.req.SortOrder, resp.SortOrder)
			assert.True(t, resp.Active)
		})
	}
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, new(MockProductRepository))

	category, err := catalog.NewCategory("Mugs", "")
	require.NoError(t, err)
	category.Description = "Ceramic mugs"
	sortOrder := 7
	categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	categoryRepo.On("Save", ctx, category).Return(nil)

	resp, err := svc.Update(ctx, category.ID, UpdateCategoryRequest{SortOrder: &sortOrder})

	require.NoError(t, err)
	assert.Equal(t, "Mugs", resp.Name)
	assert.Equal(t, "Ceramic mugs", resp.Description)
	assert.Equal(t, 7, resp.SortOrder)
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses while products remain", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		productRepo := new(MockProductRepository)
		svc := NewCategoryService(categoryRepo, productRepo)
		id := uuid.New()
		categoryRepo.On("FindByID", ctx, id).Return(&catalog.Category{}, nil)
		productRepo.On("CountByCategory", ctx, id).Return(int64(2), nil)

		err := svc.Delete(ctx, id)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CATEGORY_HAS_PRODUCTS", domainErr.Code)
		categoryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes empty category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		productRepo := new(MockProductRepository)
		svc := NewCategoryService(categoryRepo, productRepo)
		id := uuid.New()
		categoryRepo.On("FindByID", ctx, id).Return(&catalog.Category{}, nil)
		productRepo.On("CountByCategory", ctx, id).Return(int64(0), nil)
		categoryRepo.On("Delete", ctx, id).Return(nil)

		require.NoError(t, svc.Delete(ctx, id))
		categoryRepo.AssertExpectations(t)
	})

	t.Run("missing category", func(t *testing.T) {
		categoryRepo := new(MockCategoryRepository)
		svc := NewCategoryService(categoryRepo, new(MockProductRepository))
		id := uuid.New()
		categoryRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, id), shared.ErrNotFound)
	})
}

func TestCategoryService_List(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, new(MockProductRepository))
	active := true

	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "sort_order" && f.OrderDir == "asc" && f.Filters["active"] == true
	})
	categoryRepo.On("FindAll", ctx, matchFilter).Return([]catalog.Category{{Name: "Mugs"}, {Name: "Plates"}}, nil)
	categoryRepo.On("Count", ctx, matchFilter).Return(int64(2), nil)

	page, err := svc.List(ctx, CategoryListFilter{Active: &active})

	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Plates", page.Items[1].Name)
	assert.Equal(t, 1, page.TotalPages)
}

func TestCategoryService_ActivateDeactivate(t *testing.T) {
	ctx := context.Background()
	categoryRepo := new(MockCategoryRepository)
	svc := NewCategoryService(categoryRepo, new(MockProductRepository))
	category, err := catalog.NewCategory("Mugs", "")
	require.NoError(t, err)
	categoryRepo.On("FindByID", ctx, category.ID).Return(category, nil)
	categoryRepo.On("Save", ctx, category).Return(nil)

	resp, err := svc.Deactivate(ctx, category.ID)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	resp, err = svc.Activate(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, resp.Active)
}
