package dto

import "gin-catalog/models"

type CategoryInput struct {
	Label string `json:"label" binding:"required,notblank,max=100"`
}

type CreateItemInput struct {
	Label       string `json:"label" binding:"required,notblank,max=200"`
	Description string `json:"description"`
	CategoryID  uint   `json:"category_id"`
}

// UpdateItemInput leaves fields that are nil untouched.
type UpdateItemInput struct {
	Label       *string `json:"label" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"category_id"`
}

type ItemResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

func NewItemResponse(item models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Label:       item.Label,
		Description: item.Description,
	}
}

func NewItemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewItemResponse(item))
	}
	return out
}

func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:    category.ID,
		Name:  category.Name,
		Label: category.Label,
	}
}

// NewCategoryWithItemsResponse always serializes the items key, even when
// the category is empty.
func NewCategoryWithItemsResponse(category models.Category) CategoryWithItemsResponse {
	return CategoryWithItemsResponse{
		ID:    category.ID,
		Name:  category.Name,
		Label: category.Label,
		Items: NewItemResponses(category.Items),
	}
}

type CategoryWithItemsResponse struct {
	ID    uint           `json:"id"`
	Name  string         `json:"name"`
	Label string         `json:"label"`
	Items []ItemResponse `json:"items"`
}

func NewCategoryResponses(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, NewCategoryResponse(category))
	}
	return out
}

func NewCatalogResponse(categories []models.Category) []CategoryWithItemsResponse {
	out := make([]CategoryWithItemsResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, NewCategoryWithItemsResponse(category))
	}
	return out
}
