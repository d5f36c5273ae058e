package models

import "time"

// Restriction types.
const (
	RestrictionSuspend   = "suspend"
	RestrictionUnsuspend = "unsuspend"
)

// RestrictionHistory records every suspend/unsuspend applied to a user.
type RestrictionHistory struct {
	ID     int    `gorm:"primaryKey" json:"id"`
	UserID int    `gorm:"not null;index" json:"user_id"`
	Type   string `gorm:"size:20;not null" json:"type"`
	Reason string `gorm:"size:255;not null" json:"reason"`

	// Duration in days; nil means indefinite.
	Duration       *int       `json:"duration,omitempty"`
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`

	CreatedBy *int      `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateUserStatusRequest struct {
	Status   string `json:"status" binding:"required,oneof=active suspended"`
	Reason   string `json:"reason"`
	Duration *int   `json:"duration,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user moderator admin"`
}
