package models

import "time"

// Report statuses. A report starts pending and is moved exactly once per
// moderation action.
const (
	ReportPending  = "pending"
	ReportReviewed = "reviewed"
	ReportResolved = "resolved"
	ReportRejected = "rejected"
)

// Report targets exactly one of PostID/CommentID.
type Report struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	ReporterID  int    `gorm:"not null;index" json:"reporter_id"`
	PostID      *int   `gorm:"index" json:"post_id,omitempty"`
	CommentID   *int   `gorm:"index" json:"comment_id,omitempty"`
	Reason      string `gorm:"size:100;not null" json:"reason"`
	Description string `gorm:"type:text" json:"description"`
	Status      string `gorm:"size:20;not null;default:pending;index" json:"status"`
	ReviewedBy  *int   `json:"reviewed_by,omitempty"`

	Reporter User `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"reporter"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateReportRequest struct {
	Reason      string `json:"reason" binding:"required,max=100"`
	Description string `json:"description"`
}

type UpdateReportRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed resolved rejected"`
}
