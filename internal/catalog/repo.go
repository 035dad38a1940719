package catalog

import (
	"context"

	"github.com/modernsales/pawnshop/pkg/db/models"
	"gorm.io/gorm"
)

// Repository handles persistence for catalog templates.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns every template, case-insensitively by name, newest first on ties.
func (r *Repository) List(ctx context.Context) ([]models.PawnCatalogItem, error) {
	var items []models.PawnCatalogItem
	err := r.db.WithContext(ctx).
		Order("item_name COLLATE NOCASE ASC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// Create inserts the template and sets its ID.
func (r *Repository) Create(ctx context.Context, item *models.PawnCatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update rewrites the editable columns and returns the number of rows touched.
func (r *Repository) Update(ctx context.Context, id int64, name string, weight float64, note string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.PawnCatalogItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"item_name":          name,
			"default_weight_chi": weight,
			"note":               note,
		})
	return res.RowsAffected, res.Error
}

// Delete returns the number of rows removed.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PawnCatalogItem{})
	return res.RowsAffected, res.Error
}
