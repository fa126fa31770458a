package models

import "time"

// Article has no voting; owner-only delete.
type Article struct {
	ID       int          `gorm:"primaryKey" json:"id"`
	Title    string       `gorm:"not null" json:"title"`
	Content  string       `gorm:"not null" json:"content"`
	Category string       `json:"category"`
	ImageURL string       `json:"imageUrl,omitempty"`
	User     UserSnapshot `gorm:"embedded;embeddedPrefix:user_" json:"user"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateArticleRequest struct {
	Title    string       `json:"title" binding:"required"`
	Content  string       `json:"content" binding:"required"`
	Category string       `json:"category"`
	ImageURL string       `json:"imageUrl"`
	User     UserSnapshot `json:"user"`
}
