// Package notify synthesizes notification records for forum events and fans
// them out to connected clients.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/realtime"
)

// Broadcaster pushes an event to all connected clients. Satisfied by
// *realtime.Hub.
type Broadcaster interface {
	Broadcast(realtime.Event)
}

// Notifier persists a notification record and then broadcasts it. The order
// matters: a client that misses the broadcast can still recover the record
// through the list endpoint, so nothing may go on the wire before it is
// durable. Failures are logged and never fail the triggering operation.
type Notifier struct {
	db          *gorm.DB
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewNotifier(db *gorm.DB, broadcaster Broadcaster, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		db:          db,
		broadcaster: broadcaster,
		logger:      logger.With("component", "notify.Notifier"),
	}
}

var tagPattern = regexp.MustCompile(`(?s)<.*?>`)

// StripHTML removes markup from free text before it is embedded in a
// notification message, so the message renders without re-parsing rich
// content.
func StripHTML(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

func actor(user models.UserSnapshot) string {
	if user.UserName != "" {
		return user.UserName
	}
	return "Someone"
}

func QuestionAskedMessage(user models.UserSnapshot, title string) string {
	return fmt.Sprintf("%s asked a new question: \"%s\"", actor(user), StripHTML(title))
}

func AnsweredMessage(user models.UserSnapshot, text string) string {
	return fmt.Sprintf("%s answered: \"%s\"", actor(user), StripHTML(text))
}

func RepliedMessage(user models.UserSnapshot, text string) string {
	return fmt.Sprintf("%s replied: \"%s\"", actor(user), StripHTML(text))
}

func ArticlePostedMessage(user models.UserSnapshot, title string) string {
	return fmt.Sprintf("%s posted a new article: \"%s\"", actor(user), StripHTML(title))
}

func QuestionDeletedMessage(title string) string {
	return fmt.Sprintf("Question deleted: \"%s\"", StripHTML(title))
}

func (n *Notifier) QuestionAsked(ctx context.Context, user models.UserSnapshot, title string) {
	n.emit(ctx, models.NotificationQuestion, QuestionAskedMessage(user, title), user)
}

func (n *Notifier) Answered(ctx context.Context, user models.UserSnapshot, text string) {
	n.emit(ctx, models.NotificationAnswer, AnsweredMessage(user, text), user)
}

func (n *Notifier) Replied(ctx context.Context, user models.UserSnapshot, text string) {
	n.emit(ctx, models.NotificationReply, RepliedMessage(user, text), user)
}

func (n *Notifier) ArticlePosted(ctx context.Context, user models.UserSnapshot, title string) {
	n.emit(ctx, models.NotificationArticle, ArticlePostedMessage(user, title), user)
}

// QuestionDeleted carries no actor; it is a system notification.
func (n *Notifier) QuestionDeleted(ctx context.Context, title string) {
	n.emit(ctx, models.NotificationSystem, QuestionDeletedMessage(title), models.UserSnapshot{})
}

func (n *Notifier) emit(ctx context.Context, typ models.NotificationType, message string, user models.UserSnapshot) {
	record := models.Notification{Type: typ, Message: message, User: user}
	if err := n.Publish(ctx, &record); err != nil {
		n.logger.Error("failed to persist notification", "type", typ, "error", err)
	}
}

// Publish persists the record and, only on success, broadcasts it. Used
// directly by the raw notification endpoint.
func (n *Notifier) Publish(ctx context.Context, record *models.Notification) error {
	if err := n.db.WithContext(ctx).Create(record).Error; err != nil {
		return err
	}
	if n.broadcaster != nil {
		n.broadcaster.Broadcast(realtime.Event{Event: "notification", Data: record})
	}
	return nil
}
