package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category-related business operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugAvailable(ctx, category.Slug); err != nil {
		return nil, err
	}
	if req.Description != "" || req.ImageURL != "" || req.SortOrder != 0 {
		if err := category.Update(category.Name, req.Description, req.ImageURL, req.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// List retrieves categories ordered by sort order then name
func (s *CategoryService) List(ctx context.Context, filter CategoryListFilter) (*shared.Paginated[CategoryResponse], error) {
	f := shared.DefaultFilter()
	f.OrderBy = "sort_order"
	f.OrderDir = "asc"
	f.PageSize = 100
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Search = strings.TrimSpace(filter.Search)
	if filter.Active != nil {
		f.Filters["active"] = *filter.Active
	}

	categories, err := s.categoryRepo.FindAll(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.categoryRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToCategoryResponses(categories), total, f.Page, f.PageSize)
	return &page, nil
}

// Update updates a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, description, imageURL, sortOrder := category.Name, category.Description, category.ImageURL, category.SortOrder
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.ImageURL != nil {
		imageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	if err := category.Update(name, description, imageURL, sortOrder); err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		if err := category.SetSlug(*req.Slug); err != nil {
			return nil, err
		}
		if err := s.ensureSlugAvailable(ctx, category.Slug); err != nil {
			return nil, err
		}
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Activate shows a category on the storefront
func (s *CategoryService) Activate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Activate(); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Deactivate hides a category from the storefront
func (s *CategoryService) Deactivate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete deletes a category that holds no products
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.categoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CATEGORY_HAS_PRODUCTS", "Cannot delete a category that still has products")
	}
	return s.categoryRepo.Delete(ctx, id)
}

func (s *CategoryService) ensureSlugAvailable(ctx context.Context, slug string) error {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Category with this slug already exists")
	}
	return nil
}
