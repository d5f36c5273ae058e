package models

import "time"

// Notification types.
const (
	NotificationReportStatus = "report_status"
	NotificationAdminMessage = "admin_message"
)

type Notification struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"size:20;not null" json:"type"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	RelatedID *int      `json:"related_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
