package database

import (
	"fmt"
	"log/slog"

	"ratethem-backend/internal/models"

	"gorm.io/gorm"
)

var defaultCategories = []models.Category{
	{Name: "Technology", Description: "Innovation and new technologies."},
	{Name: "Education", Description: "Learning resources and training."},
	{Name: "Home & Decor", Description: "Ideas and accessories for your interior."},
	{Name: "Fashion & Accessories", Description: "Fashion trends and accessories for every style."},
	{Name: "Beauty & Health", Description: "Products for well-being, beauty and health."},
	{Name: "Food", Description: "Cooking, recipes and healthy eating."},
	{Name: "Sport & Fitness", Description: "Gear and articles for sport enthusiasts."},
	{Name: "Travel & Leisure", Description: "Destinations, activities and leisure."},
	{Name: "Art & Music", Description: "Artistic inspiration and the world of music."},
	{Name: "Automotive", Description: "Cars, motorbikes and other vehicles."},
}

type seedItem struct {
	name        string
	description string
	category    string
}

var defaultItems = []seedItem{
	{"Thriller - Michael Jackson", "The best-selling album of all time.", "Art & Music"},
	{"Bohemian Rhapsody - Queen", "A legendary rock song blending genres.", "Art & Music"},
	{"Mona Lisa", "The world's most famous portrait by Leonardo da Vinci.", "Art & Music"},
	{"The Starry Night", "Iconic painting by Vincent van Gogh.", "Art & Music"},
	{"iPhone 14 Pro", "Apple's flagship smartphone with advanced cameras.", "Technology"},
	{"MacBook Air M2", "Lightweight and powerful laptop for professionals.", "Technology"},
	{"Canon EOS R5", "A high-end mirrorless camera for professionals.", "Technology"},
	{"Cheeseburger", "A juicy grilled beef burger with cheese.", "Food"},
	{"Sushi", "Traditional Japanese dish with vinegared rice and seafood.", "Food"},
}

// Seed inserts the default categories and sample items when their tables are empty
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			categories := make([]models.Category, len(defaultCategories))
			copy(categories, defaultCategories)
			if err := tx.Create(&categories).Error; err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
			slog.Info("seeded categories", "count", len(categories))
		}

		if err := tx.Model(&models.Item{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for _, s := range defaultItems {
			item := models.Item{Name: s.name, Description: s.description}

			var category models.Category
			err := tx.Where("name = ?", s.category).First(&category).Error
			if err == nil {
				item.Categories = []models.Category{category}
			}

			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("seed item %q: %w", s.name, err)
			}
		}
		slog.Info("seeded items", "count", len(defaultItems))

		return nil
	})
}
