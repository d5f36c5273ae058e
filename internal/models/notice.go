package models

import "time"

// Notice is a site announcement written by admins.
type Notice struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	UserID      int    `gorm:"not null" json:"user_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	IsImportant bool   `gorm:"default:false" json:"is_important"`

	User User `gorm:"foreignKey:UserID" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoticeRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Content     string `json:"content" binding:"required"`
	IsImportant bool   `json:"is_important"`
}
