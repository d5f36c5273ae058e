package models

import "time"

type Post struct {
	ID            int    `gorm:"primaryKey" json:"id"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Content       string `gorm:"type:text;not null" json:"content"`
	UserID        int    `gorm:"not null;index" json:"user_id"`
	InstitutionID *int   `json:"institution_id,omitempty"`
	CategoryID    *int   `json:"category_id,omitempty"`
	ViewCount     int    `gorm:"default:0" json:"view_count"`
	IsHidden      bool   `gorm:"default:false;index" json:"is_hidden"`

	User        User         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Institution *Institution `gorm:"foreignKey:InstitutionID;constraint:OnDelete:SET NULL" json:"institution,omitempty"`
	Category    *Category    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Images      []PostImage  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PostImage struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;index" json:"post_id"`
	ImageURL  string    `gorm:"size:255;not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePostRequest struct {
	Title         string   `json:"title" binding:"required,max=255"`
	Content       string   `json:"content" binding:"required"`
	InstitutionID *int     `json:"institution_id,omitempty"`
	CategoryID    *int     `json:"category_id,omitempty"`
	ImageURLs     []string `json:"image_urls,omitempty"`
}

type UpdatePostRequest struct {
	Title         *string `json:"title,omitempty"`
	Content       *string `json:"content,omitempty"`
	InstitutionID *int    `json:"institution_id,omitempty"`
	CategoryID    *int    `json:"category_id,omitempty"`
	IsHidden      *bool   `json:"is_hidden,omitempty"`
}
