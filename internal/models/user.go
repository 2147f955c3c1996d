package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents the users table
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;size:100" json:"email"`
	PasswordHash string    `gorm:"column:hashed_password;not null;size:255" json:"-"`
	Role         string    `gorm:"size:20;not null;default:'user'" json:"role"`
	ImageURL     string    `gorm:"size:500" json:"image_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RefreshToken represents the refresh_tokens table.
// Only the SHA-256 of the issued token is stored.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	TokenHash string    `gorm:"not null;size:64;uniqueIndex" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for RefreshToken model
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// UserGrowthPoint is the number of accounts created on one day
type UserGrowthPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// UserEngagement summarises a user's rating activity
type UserEngagement struct {
	UserID       uint       `json:"user_id"`
	Username     string     `json:"username"`
	RatingsCount int64      `json:"ratings_count"`
	LastActivity *time.Time `json:"last_activity"`
}

// UserStats is the admin dashboard summary for accounts
type UserStats struct {
	TotalUsers            int64   `json:"total_users"`
	ActiveUsers           int64   `json:"active_users"`
	NewUsersToday         int64   `json:"new_users_today"`
	AverageRatingsPerUser float64 `json:"average_ratings_per_user"`
}
