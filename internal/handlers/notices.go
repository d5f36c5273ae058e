package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/audit"
	"github.com/mountain-community/backend/internal/markup"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
)

type NoticeHandler struct {
	db *gorm.DB
}

func NewNoticeHandler(db *gorm.DB) *NoticeHandler {
	return &NoticeHandler{db: db}
}

// List returns notices with important ones first.
func (h *NoticeHandler) List(c *gin.Context) {
	offset, limit := pagination(c)

	var notices []models.Notice
	if err := h.db.Preload("User").
		Order("is_important desc, created_at desc").
		Offset(offset).Limit(limit).Find(&notices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notices"})
		return
	}
	c.JSON(http.StatusOK, notices)
}

func (h *NoticeHandler) Get(c *gin.Context) {
	var notice models.Notice
	if err := h.db.Preload("User").First(&notice, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notice not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           notice.ID,
		"user_id":      notice.UserID,
		"user":         notice.User,
		"title":        notice.Title,
		"content":      notice.Content,
		"content_html": markup.Render(notice.Content),
		"is_important": notice.IsImportant,
		"created_at":   notice.CreatedAt,
		"updated_at":   notice.UpdatedAt,
	})
}

func (h *NoticeHandler) Create(c *gin.Context) {
	var input models.NoticeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	notice := models.Notice{
		UserID:      user.ID,
		Title:       markup.Clean(input.Title),
		Content:     input.Content,
		IsImportant: input.IsImportant,
	}
	if err := h.db.Create(&notice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notice"})
		return
	}

	audit.Record(h.db, user.ID, "create_notice",
		fmt.Sprintf("Admin %s created notice %d", user.Username, notice.ID), c.ClientIP())

	h.db.Preload("User").First(&notice, notice.ID)
	c.JSON(http.StatusCreated, notice)
}

func (h *NoticeHandler) Update(c *gin.Context) {
	var input models.NoticeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var notice models.Notice
	if err := h.db.First(&notice, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notice not found"})
		return
	}

	notice.Title = markup.Clean(input.Title)
	notice.Content = input.Content
	notice.IsImportant = input.IsImportant
	if err := h.db.Save(&notice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notice"})
		return
	}

	audit.Record(h.db, user.ID, "update_notice",
		fmt.Sprintf("Admin %s updated notice %d", user.Username, notice.ID), c.ClientIP())

	h.db.Preload("User").First(&notice, notice.ID)
	c.JSON(http.StatusOK, notice)
}

func (h *NoticeHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var notice models.Notice
	if err := h.db.First(&notice, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notice not found"})
		return
	}

	if err := h.db.Delete(&notice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notice"})
		return
	}

	audit.Record(h.db, user.ID, "delete_notice",
		fmt.Sprintf("Admin %s deleted notice %d", user.Username, notice.ID), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Notice deleted successfully"})
}
