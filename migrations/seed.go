package main

import (
	"context"
	"fmt"

	"gin-catalog/dto"
	"gin-catalog/repositories"
	"gin-catalog/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedItem struct {
	category    string
	label       string
	description string
}

var seedCategories = []string{"Cats", "Coffee", "Japan", "Home", "Dogs"}

var seedItems = []seedItem{
	{"Cats", "Buster", "A real rascal."},
	{"Japan", "That place with a really long name that might break japan as we know it", "Ramen here."},
	{"Cats", "Mr. Kitty", "The coolest cat."},
	{"Dogs", "Boxer", "A tough guy."},
	{"Home", "IKEA Bed Frame", "The best start to your day is a good nights sleep. Our sturdy double beds in different styles " +
		"give you comfort and quality so you wake up with a smile. Many have smart features like built-in storage or are " +
		"sized so you can slide boxes underneath. Look around our website to find what else you need, like a mattress or " +
		"pillows, to complete the comfy bed of your dreams."},
}

const (
	seedOwnerEmail = "daniel.coats@example.com"
	seedOwnerName  = "Daniel Coats"
)

// seed loads the demo catalog owned by an admin user. It does nothing when
// the catalog already has categories.
func seed(ctx context.Context, db *gorm.DB, logger *zap.Logger) error {
	categories := repositories.NewCategoryRepository(db)
	existing, err := categories.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("Catalog already has data, skipping seed", zap.Int("categories", len(existing)))
		return nil
	}

	users := repositories.NewUserRepository(db)
	owner, err := users.GetOrCreate(ctx, seedOwnerEmail, seedOwnerName)
	if err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	owner.IsAdmin = true
	if err := users.Save(ctx, owner); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}

	catalog := services.NewCatalogService(categories, repositories.NewItemRepository(db))
	ids := make(map[string]uint, len(seedCategories))
	for _, label := range seedCategories {
		category, err := catalog.CreateCategory(ctx, label)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", label, err)
		}
		ids[label] = category.ID
	}
	for _, it := range seedItems {
		input := dto.CreateItemInput{Label: it.label, Description: it.description, CategoryID: ids[it.category]}
		if _, err := catalog.CreateItem(ctx, input, owner.ID); err != nil {
			return fmt.Errorf("seed item %q: %w", it.label, err)
		}
	}

	logger.Info("Seeded catalog",
		zap.Int("categories", len(seedCategories)),
		zap.Int("items", len(seedItems)),
	)
	return nil
}
