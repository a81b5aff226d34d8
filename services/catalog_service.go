package services

import (
	"context"
	"errors"
	"strings"

	"gin-catalog/apperrors"
	"gin-catalog/constants"
	"gin-catalog/dto"
	"gin-catalog/models"
	"gin-catalog/repositories"

	"gorm.io/gorm"
)

const (
	msgCategoryExists = "A category with that name already exists"
	msgItemExists     = "An item with that name already exists in this category"
	msgEmptyName      = "Name cannot be empty"
)

// ICatalogService runs catalog queries and mutations. Callers must have
// passed authz.Authorize for the operation before calling a mutation.
type ICatalogService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListCatalog(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, categoryName string) (*models.Category, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	ListItemsByCategory(ctx context.Context, categoryName string) ([]models.Item, error)
	GetItem(ctx context.Context, categoryName string, itemName string) (*models.Item, error)
	CreateCategory(ctx context.Context, label string) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryName string, newLabel string) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryName string) (int64, error)
	CreateItem(ctx context.Context, input dto.CreateItemInput, ownerID uint) (*models.Item, error)
	UpdateItem(ctx context.Context, categoryName string, itemName string, input dto.UpdateItemInput) (*models.Item, error)
	DeleteItem(ctx context.Context, categoryName string, itemName string) error
}

type CatalogService struct {
	categories repositories.ICategoryRepository
	items      repositories.IItemRepository
}

func NewCatalogService(categories repositories.ICategoryRepository, items repositories.IItemRepository) ICatalogService {
	return &CatalogService{categories: categories, items: items}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.FindAll(ctx)
}

func (s *CatalogService) ListCatalog(ctx context.Context) ([]models.Category, error) {
	return s.categories.FindAllWithItems(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, categoryName string) (*models.Category, error) {
	category, err := s.categories.FindByNameWithItems(ctx, Normalize(categoryName))
	if err != nil {
		return nil, translate(err, constants.ErrCategoryNotFound, "")
	}
	return category, nil
}

func (s *CatalogService) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.items.FindAll(ctx)
}

func (s *CatalogService) ListItemsByCategory(ctx context.Context, categoryName string) ([]models.Item, error) {
	category, err := s.findCategory(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	return s.items.FindByCategory(ctx, category.ID)
}

func (s *CatalogService) GetItem(ctx context.Context, categoryName string, itemName string) (*models.Item, error) {
	category, err := s.findCategory(ctx, categoryName)
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindByName(ctx, category.ID, Normalize(itemName))
	if err != nil {
		return nil, translate(err, constants.ErrItemNotFound, "")
	}
	return item, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, label string) (*models.Category, error) {
	label = strings.TrimSpace(label)
	name := Normalize(label)
	if name == "" {
		return nil, apperrors.New(apperrors.InvalidInput, msgEmptyName)
	}

	exists, err := s.categories.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.New(apperrors.Conflict, msgCategoryExists)
	}

	category := models.Category{Name: name, Label: label}
	if err := s.categories.Create(ctx, &category); err != nil {
		return nil, translate(err, "", msgCategoryExists)
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, categoryName string, newLabel string) (*models.Category, error) {
	newLabel = strings.TrimSpace(newLabel)
	newName := Normalize(newLabel)
	if newName == "" {
		return nil, apperrors.New(apperrors.InvalidInput, msgEmptyName)
	}

	category, err := s.findCategory(ctx, categoryName)
	if err != nil {
		return nil, err
	}

	if newName != category.Name {
		exists, err := s.categories.ExistsByName(ctx, newName)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.New(apperrors.Conflict, msgCategoryExists)
		}
	}

	category.Label = newLabel
	category.Name = newName
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, translate(err, "", msgCategoryExists)
	}
	return category, nil
}

// DeleteCategory removes the category together with all of its items and
// reports how many items went with it.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryName string) (int64, error) {
	category, err := s.findCategory(ctx, categoryName)
	if err != nil {
		return 0, err
	}
	deleted, err := s.categories.DeleteWithItems(ctx, category.ID)
	if err != nil {
		return 0, translate(err, constants.ErrCategoryNotFound, "")
	}
	return deleted, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, input dto.CreateItemInput, ownerID uint) (*models.Item, error) {
	newItem := models.Item{
		Label:       strings.TrimSpace(input.Label),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		UserID:      ownerID,
	}
	if err := s.validateItem(ctx, &newItem); err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, &newItem); err != nil {
		return nil, translate(err, "", msgItemExists)
	}
	return &newItem, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, categoryName string, itemName string, input dto.UpdateItemInput) (*models.Item, error) {
	targetItem, err := s.GetItem(ctx, categoryName, itemName)
	if err != nil {
		return nil, err
	}

	if input.Label != nil {
		targetItem.Label = strings.TrimSpace(*input.Label)
	}
	if input.Description != nil {
		targetItem.Description = *input.Description
	}
	if input.CategoryID != nil {
		targetItem.CategoryID = *input.CategoryID
	}
	if err := s.validateItem(ctx, targetItem); err != nil {
		return nil, err
	}

	if err := s.items.Update(ctx, targetItem); err != nil {
		return nil, translate(err, "", msgItemExists)
	}
	return targetItem, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, categoryName string, itemName string) error {
	item, err := s.GetItem(ctx, categoryName, itemName)
	if err != nil {
		return err
	}
	return translate(s.items.Delete(ctx, item.ID), constants.ErrItemNotFound, "")
}

// validateItem derives item.Name from item.Label and checks the category
// exists and has no other item with that name.
func (s *CatalogService) validateItem(ctx context.Context, item *models.Item) error {
	item.Name = Normalize(item.Label)
	if item.Name == "" {
		return apperrors.New(apperrors.InvalidInput, msgEmptyName)
	}

	if _, err := s.categories.FindByID(ctx, item.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.NotFound, constants.ErrCategoryNotFound, err)
		}
		return err
	}

	exists, err := s.items.ExistsByName(ctx, item.CategoryID, item.Name, item.ID)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.New(apperrors.Conflict, msgItemExists)
	}
	return nil
}

func (s *CatalogService) findCategory(ctx context.Context, categoryName string) (*models.Category, error) {
	category, err := s.categories.FindByName(ctx, Normalize(categoryName))
	if err != nil {
		return nil, translate(err, constants.ErrCategoryNotFound, "")
	}
	return category, nil
}
