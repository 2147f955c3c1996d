package models

import "time"

const (
	MinRatingValue = 0.0
	MaxRatingValue = 5.0
)

// Rating represents the ratings table.
// A user rates a given item at most once.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Value     float64   `gorm:"not null" json:"value"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_item" json:"user_id"`
	ItemID    uint      `gorm:"not null;uniqueIndex:idx_rating_user_item;index" json:"item_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Item      Item      `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Rating model
func (Rating) TableName() string {
	return "ratings"
}

// RatingDistribution counts ratings per rounded value
type RatingDistribution struct {
	Value int   `json:"value"`
	Count int64 `json:"count"`
}

// RecentRating is a rating joined with its item and author names
type RecentRating struct {
	ID        uint      `json:"id"`
	Value     float64   `json:"value"`
	ItemName  string    `json:"item_name"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// TopCategory is the category whose items collected the most ratings
type TopCategory struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// RatingStats is the global rating summary
type RatingStats struct {
	Average     float64      `json:"average"`
	TotalCount  int64        `json:"totalCount"`
	TopCategory *TopCategory `json:"topCategory"`
}
