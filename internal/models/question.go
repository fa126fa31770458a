package models

import "time"

type Question struct {
	ID       int          `gorm:"primaryKey" json:"id"`
	Title    string       `gorm:"not null" json:"questionName"`
	URL      string       `json:"questionUrl,omitempty"`
	Category string       `gorm:"not null;index" json:"category"`
	User     UserSnapshot `gorm:"embedded;embeddedPrefix:user_" json:"user"`

	// Denormalized tallies, mutated only by the vote ledger. Never negative.
	UpVotes   int `gorm:"default:0" json:"upVotes"`
	DownVotes int `gorm:"default:0" json:"downVotes"`

	// Read-time join; the answers table is the source of truth.
	AllAnswers []Answer `gorm:"foreignKey:QuestionID" json:"allAnswers"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateQuestionRequest struct {
	Title    string       `json:"questionName" binding:"required"`
	URL      string       `json:"questionUrl"`
	Category string       `json:"category" binding:"required"`
	User     UserSnapshot `json:"user"`
}
