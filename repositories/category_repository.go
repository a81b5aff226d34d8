package repositories

import (
	"context"

	"gin-catalog/models"

	"gorm.io/gorm"
)

type ICategoryRepository interface {
	FindAll(ctx context.Context) ([]models.Category, error)
	FindAllWithItems(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByNameWithItems(ctx context.Context, name string) (*models.Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	DeleteWithItems(ctx context.Context, categoryID uint) (int64, error)
}

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) ICategoryRepository {
	return &CategoryRepository{db: db}
}

func newestItemsFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) FindAllWithItems(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	result := r.db.WithContext(ctx).
		Preload("Items", newestItemsFirst).
		Order("name ASC").
		Find(&categories)
	if result.Error != nil {
		return nil, result.Error
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) FindByNameWithItems(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	result := r.db.WithContext(ctx).
		Preload("Items", newestItemsFirst).
		First(&category, "name = ?", name)
	if result.Error != nil {
		return nil, result.Error
	}
	return &category, nil
}

func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return normalizeError(r.db.WithContext(ctx).Create(category).Error)
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	result := r.db.WithContext(ctx).
		Model(category).
		Select("name", "label", "updated_at").
		Updates(map[string]interface{}{"name": category.Name, "label": category.Label})
	if result.Error != nil {
		return normalizeError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithItems removes the category's items and then the category in one
// transaction. It returns the number of items removed.
func (r *CategoryRepository) DeleteWithItems(ctx context.Context, categoryID uint) (int64, error) {
	var deletedItems int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := tx.Where("category_id = ?", categoryID).Delete(&models.Item{})
		if items.Error != nil {
			return items.Error
		}
		deletedItems = items.RowsAffected

		category := tx.Delete(&models.Category{}, categoryID)
		if category.Error != nil {
			return category.Error
		}
		if category.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deletedItems, nil
}
