package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/audit"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
	"github.com/mountain-community/backend/internal/settings"
)

type AdminHandler struct {
	db       *gorm.DB
	settings *settings.Store
}

func NewAdminHandler(db *gorm.DB, store *settings.Store) *AdminHandler {
	return &AdminHandler{db: db, settings: store}
}

func groupCounts(db *gorm.DB, model interface{}, column string) map[string]int64 {
	type row struct {
		Key   string
		Count int64
	}
	var rows []row
	db.Model(model).Select(column + " as key, count(*) as count").Group(column).Scan(&rows)
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Count
	}
	return out
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(c *gin.Context) {
	var users, posts, comments, reports, pendingReports, hiddenPosts, hiddenComments int64
	var institutions, categories, notices int64

	h.db.Model(&models.User{}).Count(&users)
	h.db.Model(&models.Post{}).Count(&posts)
	h.db.Model(&models.Comment{}).Count(&comments)
	h.db.Model(&models.Report{}).Count(&reports)
	h.db.Model(&models.Report{}).Where("status = ?", models.ReportPending).Count(&pendingReports)
	h.db.Model(&models.Post{}).Where("is_hidden = ?", true).Count(&hiddenPosts)
	h.db.Model(&models.Comment{}).Where("is_hidden = ?", true).Count(&hiddenComments)
	h.db.Model(&models.Institution{}).Count(&institutions)
	h.db.Model(&models.Category{}).Count(&categories)
	h.db.Model(&models.Notice{}).Count(&notices)

	c.JSON(http.StatusOK, gin.H{
		"users": gin.H{
			"total":     users,
			"by_role":   groupCounts(h.db, &models.User{}, "role"),
			"by_status": groupCounts(h.db, &models.User{}, "status"),
		},
		"posts": gin.H{
			"total":  posts,
			"hidden": hiddenPosts,
		},
		"comments": gin.H{
			"total":  comments,
			"hidden": hiddenComments,
		},
		"reports": gin.H{
			"total":     reports,
			"pending":   pendingReports,
			"by_status": groupCounts(h.db, &models.Report{}, "status"),
		},
		"institutions": institutions,
		"categories":   categories,
		"notices":      notices,
	})
}

// GetSettings returns every section.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	site, err := h.settings.Site()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	report, err := h.settings.Report()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	notification, err := h.settings.Notification()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		settings.SectionSite:         site,
		settings.SectionReport:       report,
		settings.SectionNotification: notification,
	})
}

// GetSection returns one settings section.
func (h *AdminHandler) GetSection(c *gin.Context) {
	section, err := h.settings.Section(c.Param("section"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, section)
}

// UpdateSection validates and persists one settings section.
func (h *AdminHandler) UpdateSection(c *gin.Context) {
	name := c.Param("section")

	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.settings.Section(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	section, err := h.settings.UpdateSection(name, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	audit.Record(h.db, user.ID, "update_settings",
		fmt.Sprintf("Admin %s updated settings section %q", user.Username, name), c.ClientIP())

	c.JSON(http.StatusOK, section)
}

// ActivityLogs returns the audit trail, newest first, optionally filtered by
// user or action type.
func (h *AdminHandler) ActivityLogs(c *gin.Context) {
	offset, limit := pagination(c)

	query := h.db.Model(&models.ActivityLog{})
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if actionType := c.Query("action_type"); actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}

	var logs []models.ActivityLog
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity logs"})
		return
	}

	// Resolve actor usernames in one pass.
	ids := make([]int, 0, len(logs))
	seen := make(map[int]bool)
	for _, l := range logs {
		if !seen[l.UserID] {
			seen[l.UserID] = true
			ids = append(ids, l.UserID)
		}
	}
	names := make(map[int]string, len(ids))
	if len(ids) > 0 {
		var users []models.User
		h.db.Where("id IN ?", ids).Find(&users)
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}

	out := make([]gin.H, 0, len(logs))
	for _, l := range logs {
		out = append(out, gin.H{
			"id":          l.ID,
			"user_id":     l.UserID,
			"username":    names[l.UserID],
			"action_type": l.ActionType,
			"description": l.Description,
			"ip_address":  l.IPAddress,
			"created_at":  l.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
