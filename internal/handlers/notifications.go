package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns the current user's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	offset, limit := pagination(c)

	var notifications []models.Notification
	if err := h.db.Where("user_id = ?", user.ID).
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var count int64
	h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&count)
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead marks one of the current user's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var notification models.Notification
	if err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	notification.IsRead = true
	h.db.Save(&notification)
	c.JSON(http.StatusOK, notification)
}

// MarkAllRead marks every unread notification of the current user as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)

	var notifications []models.Notification
	h.db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&notifications)
	c.JSON(http.StatusOK, notifications)
}

// Delete removes one of the current user's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var notification models.Notification
	if err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		First(&notification).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	if err := h.db.Delete(&notification).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	c.JSON(http.StatusOK, notification)
}
