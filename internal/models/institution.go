package models

import "time"

type Institution struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;unique;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type InstitutionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}
