package models

import "time"

// Answer is a top-level answer to a question when ParentAnswerID is nil, or a
// nested reply otherwise. The parent pointer is the single source of truth
// for nesting; the reply forest is derived at read time.
type Answer struct {
	ID             int          `gorm:"primaryKey" json:"id"`
	Body           string       `gorm:"not null" json:"answer"` // rich text / HTML
	QuestionID     int          `gorm:"index" json:"questionId"`
	ParentAnswerID *int         `gorm:"index" json:"parentAnswerId,omitempty"`
	User           UserSnapshot `gorm:"embedded;embeddedPrefix:user_" json:"user"`

	UpVotes   int `gorm:"default:0" json:"upVotes"`
	DownVotes int `gorm:"default:0" json:"downVotes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateAnswerRequest struct {
	Body           string       `json:"answer" binding:"required"`
	QuestionID     int          `json:"questionId"`
	ParentAnswerID *int         `json:"parentAnswerId"`
	User           UserSnapshot `json:"user"`
}
