package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/audit"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
)

type InstitutionHandler struct {
	db *gorm.DB
}

func NewInstitutionHandler(db *gorm.DB) *InstitutionHandler {
	return &InstitutionHandler{db: db}
}

func (h *InstitutionHandler) List(c *gin.Context) {
	var institutions []models.Institution
	if err := h.db.Order("name asc").Find(&institutions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch institutions"})
		return
	}
	c.JSON(http.StatusOK, institutions)
}

func (h *InstitutionHandler) Get(c *gin.Context) {
	var institution models.Institution
	if err := h.db.First(&institution, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Institution not found"})
		return
	}
	c.JSON(http.StatusOK, institution)
}

func (h *InstitutionHandler) Create(c *gin.Context) {
	var input models.InstitutionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	institution := models.Institution{Name: input.Name, Description: input.Description}
	if err := h.db.Create(&institution).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Institution already exists"})
		return
	}

	audit.Record(h.db, user.ID, "create_institution",
		fmt.Sprintf("Admin %s created institution %q", user.Username, institution.Name), c.ClientIP())

	c.JSON(http.StatusCreated, institution)
}

func (h *InstitutionHandler) Update(c *gin.Context) {
	var input models.InstitutionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	var institution models.Institution
	if err := h.db.First(&institution, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Institution not found"})
		return
	}

	institution.Name = input.Name
	institution.Description = input.Description
	if err := h.db.Save(&institution).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update institution"})
		return
	}

	audit.Record(h.db, user.ID, "update_institution",
		fmt.Sprintf("Admin %s updated institution %d", user.Username, institution.ID), c.ClientIP())

	c.JSON(http.StatusOK, institution)
}

func (h *InstitutionHandler) Delete(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var institution models.Institution
	if err := h.db.First(&institution, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Institution not found"})
		return
	}

	// Posts keep their rows; the association is simply cleared.
	h.db.Model(&models.Post{}).Where("institution_id = ?", institution.ID).
		Update("institution_id", nil)

	if err := h.db.Delete(&institution).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete institution"})
		return
	}

	audit.Record(h.db, user.ID, "delete_institution",
		fmt.Sprintf("Admin %s deleted institution %d", user.Username, institution.ID), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"message": "Institution deleted successfully"})
}
