package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/audit"
	"github.com/mountain-community/backend/internal/middleware"
	"github.com/mountain-community/backend/internal/models"
	"github.com/mountain-community/backend/internal/notify"
	"github.com/mountain-community/backend/internal/settings"
)

type UserHandler struct {
	db       *gorm.DB
	settings *settings.Store
	sms      notify.SMSSender
}

func NewUserHandler(db *gorm.DB, store *settings.Store, sms notify.SMSSender) *UserHandler {
	return &UserHandler{db: db, settings: store, sms: sms}
}

// ListUsers returns all users for staff.
func (h *UserHandler) ListUsers(c *gin.Context) {
	offset, limit := pagination(c)

	var users []models.User
	if err := h.db.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns a single user's profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe updates the current user's profile.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var input models.UpdateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)

	if input.Username != nil {
		var existing models.User
		if err := h.db.Where("username = ?", *input.Username).First(&existing).Error; err == nil && existing.ID != user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		user.Username = *input.Username
	}
	if input.Email != nil {
		var existing models.User
		if err := h.db.Where("email = ?", *input.Email).First(&existing).Error; err == nil && existing.ID != user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
			return
		}
		user.Email = *input.Email
	}
	if input.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.PasswordHash = string(hashed)
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := h.db.Save(user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	audit.Record(h.db, user.ID, "update_profile",
		fmt.Sprintf("User %s updated profile", user.Username), c.ClientIP())

	c.JSON(http.StatusOK, user)
}

// UpdateRole changes a user's role. Admin only.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var input models.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := middleware.CurrentUser(c)

	var user models.User
	if err := h.db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Role = input.Role
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	audit.Record(h.db, actor.ID, "update_role",
		fmt.Sprintf("Admin %s set role of user %d to %s", actor.Username, user.ID, user.Role), c.ClientIP())

	c.JSON(http.StatusOK, user)
}

// UpdateStatus suspends or reactivates a user, recording the restriction and
// notifying the affected account.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var input models.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, _ := middleware.CurrentUser(c)

	var user models.User
	if err := h.db.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	restrictionType := models.RestrictionUnsuspend
	var until *time.Time
	if input.Status == models.StatusSuspended {
		restrictionType = models.RestrictionSuspend
		if input.Duration != nil {
			t := time.Now().AddDate(0, 0, *input.Duration)
			until = &t
		}
	}

	user.Status = input.Status
	user.SuspendedUntil = until
	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.db.Create(&models.RestrictionHistory{
		UserID:         user.ID,
		Type:           restrictionType,
		Reason:         input.Reason,
		Duration:       input.Duration,
		SuspendedUntil: until,
		CreatedBy:      &actor.ID,
	})

	content := fmt.Sprintf("Your account has been %sed.", restrictionType)
	if input.Reason != "" {
		content += " Reason: " + input.Reason
	}
	prefs, prefsErr := h.settings.Notification()
	if prefsErr == nil && prefs.OnAdminMessage {
		h.db.Create(&models.Notification{
			UserID:  user.ID,
			Type:    models.NotificationAdminMessage,
			Content: content,
		})
	}
	if prefsErr == nil && prefs.SMSOnSuspension && h.sms != nil && user.Phone != "" &&
		restrictionType == models.RestrictionSuspend {
		// Delivery failures are logged and swallowed, like audit writes.
		if err := h.sms.SendSMS(user.Phone, content); err != nil {
			log.Printf("notify: failed to send suspension SMS to user %d: %v", user.ID, err)
		}
	}

	audit.Record(h.db, actor.ID, "update_user_status",
		fmt.Sprintf("User %s set status of user %d to %s", actor.Username, user.ID, user.Status), c.ClientIP())

	c.JSON(http.StatusOK, user)
}

// Restrictions lists a user's suspend/unsuspend history for staff.
func (h *UserHandler) Restrictions(c *gin.Context) {
	var history []models.RestrictionHistory
	if err := h.db.Where("user_id = ?", c.Param("id")).
		Order("created_at desc").Find(&history).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch restriction history"})
		return
	}
	c.JSON(http.StatusOK, history)
}
