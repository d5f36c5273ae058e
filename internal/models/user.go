package models

import "time"

// Role values stored on User.Role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Status values stored on User.Status.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type User struct {
	ID           int    `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"size:50;unique;not null" json:"username"`
	Email        string `gorm:"size:100;unique;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:user" json:"role"`
	Status       string `gorm:"size:20;not null;default:active" json:"status"`
	Bio          string `json:"bio"`

	// E.164 number for SMS notices; empty means no SMS.
	Phone string `gorm:"size:20" json:"phone,omitempty"`

	// Set while Status is "suspended"; nil means indefinite.
	SuspendedUntil *time.Time `json:"suspended_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsStaff reports whether the user may act as a moderator.
func (u *User) IsStaff() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,username"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,e164"`
}
