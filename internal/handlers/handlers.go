package handlers

import (
	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/notify"
	"github.com/communityforum/backend/internal/votes"
)

// Handler combines all handler types
type Handler struct {
	Question     *QuestionHandler
	Answer       *AnswerHandler
	Vote         *VoteHandler
	Article      *ArticleHandler
	Notification *NotificationHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, notifier *notify.Notifier) *Handler {
	return &Handler{
		Question:     NewQuestionHandler(db, notifier),
		Answer:       NewAnswerHandler(db, notifier),
		Vote:         NewVoteHandler(votes.NewLedger(db)),
		Article:      NewArticleHandler(db, notifier),
		Notification: NewNotificationHandler(db, notifier),
	}
}
