package models

import "time"

// Category represents the categories table
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

// TableName specifies the table name for Category model
func (Category) TableName() string {
	return "categories"
}

// Tag represents the tags table
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:100" json:"name"`
}

// TableName specifies the table name for Tag model
func (Tag) TableName() string {
	return "tags"
}

// Item represents the items table.
// Categories and tags are linked through item_category and item_tag.
type Item struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"not null;size:200;index" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	ImageURL    string     `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Categories  []Category `gorm:"many2many:item_category;" json:"categories"`
	Tags        []Tag      `gorm:"many2many:item_tag;" json:"tags"`
}

// TableName specifies the table name for Item model
func (Item) TableName() string {
	return "items"
}

// ItemWithStats is an item enriched with its rating aggregate
type ItemWithStats struct {
	Item
	AvgRating   float64 `json:"avg_rating"`
	CountRating int64   `json:"count_rating"`
}

// ItemRatingAggregate is one row of the per-item rating aggregate query
type ItemRatingAggregate struct {
	ItemID      uint
	AvgRating   float64
	CountRating int64
}
