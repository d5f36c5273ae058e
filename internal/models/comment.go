package models

import "time"

type Comment struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Content  string `gorm:"type:text;not null" json:"content"`
	UserID   int    `gorm:"not null;index" json:"user_id"`
	PostID   int    `gorm:"not null;index" json:"post_id"`
	ParentID *int   `gorm:"index" json:"parent_id,omitempty"`
	IsHidden bool   `gorm:"default:false" json:"is_hidden"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	PostID   int    `json:"post_id" binding:"required"`
	ParentID *int   `json:"parent_id,omitempty"`
}

type UpdateCommentRequest struct {
	Content  *string `json:"content,omitempty"`
	IsHidden *bool   `json:"is_hidden,omitempty"`
}
