package persistence

import (
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFound maps gorm's not-found error onto the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// containsPattern builds a lower-cased LIKE pattern with wildcards escaped
func containsPattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(search))) + "%"
}

// paginate applies ordering and the page window from filter.
// fallbackOrder is used when filter.OrderBy is not whitelisted.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, fallbackOrder string) *gorm.DB {
	if field := ValidateSortField(filter.OrderBy, allowed, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(fallbackOrder)
	}
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// deleteByID removes a row, reporting ErrNotFound when nothing matched
func deleteByID(db *gorm.DB, model interface{}, id interface{}) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// upsertOmitting inserts model when no row has its id, otherwise updates
// every column except the omitted ones. Zero values are always written so
// that column defaults never override a false flag.
func upsertOmitting(db *gorm.DB, model interface{}, id interface{}, omit ...string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Select("*").Create(model).Error
	}
	return db.Model(model).Select("*").Omit(append([]string{"id", "created_at"}, omit...)...).Updates(model).Error
}
