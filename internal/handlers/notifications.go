package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/notify"
)

type NotificationHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewNotificationHandler(db *gorm.DB, notifier *notify.Notifier) *NotificationHandler {
	return &NotificationHandler{db: db, notifier: notifier}
}

// CreateNotification is the raw admin/manual path: persist then broadcast,
// exactly like organically triggered notifications.
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var input models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Type.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification type"})
		return
	}

	record := models.Notification{
		Type:    input.Type,
		Message: input.Message,
		User:    input.User,
	}
	if err := h.notifier.Publish(c.Request.Context(), &record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// GetNotifications lists all notifications newest-first with the unread
// count. This is the recovery path for broadcasts missed while disconnected.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	var notifications []models.Notification
	if err := db.Order("created_at desc").Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching notifications"})
		return
	}

	var unreadCount int64
	if err := db.Model(&models.Notification{}).Where("is_read = ?", false).Count(&unreadCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching notifications"})
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unreadCount,
	})
}

// MarkRead marks one notification read. Idempotent: marking an already-read
// notification again is a no-op.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var notification models.Notification
	if err := db.First(&notification, notificationID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if !notification.IsRead {
		if err := db.Model(&notification).Update("is_read", true).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
			return
		}
	}

	c.JSON(http.StatusOK, notification)
}

// MarkAllRead marks every unread notification read in one bulk update.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	err := h.db.WithContext(c.Request.Context()).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read"})
}
