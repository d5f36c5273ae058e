package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
	"github.com/mountain-community/backend/internal/moderation"
)

type ReportHandler struct {
	db  *gorm.DB
	mod *moderation.Service
}

func NewReportHandler(db *gorm.DB, mod *moderation.Service) *ReportHandler {
	return &ReportHandler{db: db, mod: mod}
}

// ListReports returns reports for staff, newest first, optionally filtered
// by status.
func (h *ReportHandler) ListReports(c *gin.Context) {
	offset, limit := pagination(c)

	query := h.db.Preload("Reporter").Model(&models.Report{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetReport returns a single report.
func (h *ReportHandler) GetReport(c *gin.Context) {
	var report models.Report
	if err := h.db.Preload("Reporter").First(&report, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport moves a report to an arbitrary status.
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	var input models.UpdateReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reportID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	report, err := h.mod.SetStatus(reportID, user, input.Status, c.ClientIP())
	if err != nil {
		writeModerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ApproveReport marks a report reviewed and hides its target.
func (h *ReportHandler) ApproveReport(c *gin.Context) {
	h.resolve(c, true)
}

// RejectReport marks a report rejected and unhides its target.
func (h *ReportHandler) RejectReport(c *gin.Context) {
	h.resolve(c, false)
}

func (h *ReportHandler) resolve(c *gin.Context, approve bool) {
	reportID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report id"})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var report *models.Report
	if approve {
		report, err = h.mod.Approve(reportID, user, c.ClientIP())
	} else {
		report, err = h.mod.Reject(reportID, user, c.ClientIP())
	}
	if err != nil {
		writeModerationError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
