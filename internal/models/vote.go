package models

import "time"

type TargetType string

const (
	TargetQuestion TargetType = "question"
	TargetAnswer   TargetType = "answer"
)

func (t TargetType) Valid() bool {
	return t == TargetQuestion || t == TargetAnswer
}

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

// Vote records one user's stance on one target. The composite unique index is
// what guarantees at most one row per (user, target) — application logic
// alone cannot, two first-time votes can race.
type Vote struct {
	ID         int           `gorm:"primaryKey" json:"id"`
	UserID     string        `gorm:"not null;uniqueIndex:idx_votes_user_target" json:"userId"` // email or uid
	TargetID   int           `gorm:"not null;uniqueIndex:idx_votes_user_target" json:"targetId"`
	TargetType TargetType    `gorm:"not null;uniqueIndex:idx_votes_user_target" json:"targetType"`
	Direction  VoteDirection `gorm:"not null" json:"direction"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type CastVoteRequest struct {
	UserID     string        `json:"userId" binding:"required"`
	TargetID   int           `json:"targetId" binding:"required"`
	TargetType TargetType    `json:"targetType" binding:"required"`
	Direction  VoteDirection `json:"direction" binding:"required"`
}
