// Package audit appends activity-log rows for every mutating action.
package audit

import (
	"log"

	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/models"
)

// Record writes one activity-log entry. Audit failures are logged and
// swallowed so they never abort the request that triggered them.
func Record(db *gorm.DB, userID int, actionType, description, ip string) {
	entry := models.ActivityLog{
		UserID:      userID,
		ActionType:  actionType,
		Description: description,
		IPAddress:   ip,
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s for user %d: %v", actionType, userID, err)
	}
}
