package repositories

import (
	"context"

	"gin-catalog/models"

	"gorm.io/gorm"
)

type IItemRepository interface {
	FindAll(ctx context.Context) ([]models.Item, error)
	FindByCategory(ctx context.Context, categoryID uint) ([]models.Item, error)
	FindByName(ctx context.Context, categoryID uint, name string) (*models.Item, error)
	ExistsByName(ctx context.Context, categoryID uint, name string, excludeID uint) (bool, error)
	Create(ctx context.Context, newItem *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, itemID uint) error
}

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) IItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := newestItemsFirst(r.db.WithContext(ctx)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) FindByCategory(ctx context.Context, categoryID uint) ([]models.Item, error) {
	var items []models.Item
	result := newestItemsFirst(r.db.WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}
	return items, nil
}

func (r *ItemRepository) FindByName(ctx context.Context, categoryID uint, name string) (*models.Item, error) {
	var item models.Item
	result := r.db.WithContext(ctx).First(&item, "category_id = ? AND name = ?", categoryID, name)
	if result.Error != nil {
		return nil, result.Error
	}
	return &item, nil
}

// ExistsByName reports whether another item in the category already uses
// name. excludeID skips the item being updated.
func (r *ItemRepository) ExistsByName(ctx context.Context, categoryID uint, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Item{}).Where("category_id = ? AND name = ?", categoryID, name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ItemRepository) Create(ctx context.Context, newItem *models.Item) error {
	return normalizeError(r.db.WithContext(ctx).Create(newItem).Error)
}

func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	result := r.db.WithContext(ctx).
		Model(item).
		Select("name", "label", "description", "category_id", "updated_at").
		Updates(map[string]interface{}{
			"name":        item.Name,
			"label":       item.Label,
			"description": item.Description,
			"category_id": item.CategoryID,
		})
	if result.Error != nil {
		return normalizeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, itemID uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
