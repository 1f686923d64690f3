package catalog

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Category groups products on the storefront
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	ImageURL    string `gorm:"type:varchar(500)"`
	SortOrder   int    `gorm:"not null;default:0"`
	Active      bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates an active category. The slug is derived from the
// name when empty.
func NewCategory(name, slug string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}
	slug, err := resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Active:            true,
	}, nil
}

// Update changes the display fields of the category
func (c *Category) Update(name, description, imageURL string, sortOrder int) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}
	if len(imageURL) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_URL", "Image URL cannot exceed 500 characters")
	}

	c.Name = name
	c.Description = description
	c.ImageURL = imageURL
	c.SortOrder = sortOrder
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetSlug replaces the slug
func (c *Category) SetSlug(slug string) error {
	if !shared.IsValidSlug(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}
	c.Slug = slug
	c.UpdatedAt = time.Now()
	return nil
}

// Activate makes the category visible on the storefront
func (c *Category) Activate() error {
	if c.Active {
		return shared.NewDomainError("ALREADY_ACTIVE", "Category is already active")
	}
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate hides the category from the storefront
func (c *Category) Deactivate() error {
	if !c.Active {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}

func resolveSlug(name, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = shared.Slugify(name)
	}
	if !shared.IsValidSlug(slug) {
		return "", shared.NewDomainError("INVALID_SLUG", "Slug may only contain lowercase letters, digits and dashes")
	}
	return slug, nil
}
