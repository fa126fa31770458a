package models

import "time"

type NotificationType string

const (
	NotificationAnswer   NotificationType = "answer"
	NotificationReply    NotificationType = "reply"
	NotificationVote     NotificationType = "vote"
	NotificationSystem   NotificationType = "system"
	NotificationQuestion NotificationType = "question"
	NotificationArticle  NotificationType = "article"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationAnswer, NotificationReply, NotificationVote,
		NotificationSystem, NotificationQuestion, NotificationArticle:
		return true
	}
	return false
}

// Notification is created as a side effect of other entities; after creation
// only the read flag ever changes.
type Notification struct {
	ID      int              `gorm:"primaryKey" json:"id"`
	Type    NotificationType `gorm:"not null" json:"type"`
	Message string           `gorm:"not null" json:"message"`
	IsRead  bool             `gorm:"default:false;index" json:"isRead"`
	User    UserSnapshot     `gorm:"embedded;embeddedPrefix:user_" json:"user"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateNotificationRequest struct {
	Type    NotificationType `json:"type" binding:"required"`
	Message string           `json:"message" binding:"required"`
	User    UserSnapshot     `json:"user"`
}
