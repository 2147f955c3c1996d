package database

import (
	"path/filepath"
	"testing"

	"ratethem-backend/internal/config"
	"ratethem-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("app.db"))
	assert.Equal(t, "app.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", SQLiteDSN("app.db?mode=rwc"))
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "connect.db")},
		Server:   config.ServerConfig{GinMode: "release"},
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.Rating{}))
	assert.True(t, db.Migrator().HasTable("item_category"))
	assert.True(t, db.Migrator().HasTable("item_tag"))
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(&config.Config{Database: config.DatabaseConfig{Driver: "oracle"}})
	assert.Error(t, err)
}

func TestSeed_IsIdempotent(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)

	require.NoError(t, Seed(db))
	require.NoError(t, Seed(db))

	var categories, items int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.Item{}).Count(&items).Error)
	assert.Equal(t, int64(len(defaultCategories)), categories)
	assert.Equal(t, int64(len(defaultItems)), items)

	var sushi models.Item
	require.NoError(t, db.Preload("Categories").Where("name = ?", "Sushi").First(&sushi).Error)
	require.Len(t, sushi.Categories, 1)
	assert.Equal(t, "Food", sushi.Categories[0].Name)
}
