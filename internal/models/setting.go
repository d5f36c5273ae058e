package models

import "time"

// Setting is a flat "section.key" row. Values are JSON-encoded strings so a
// section can round-trip through the typed structs in internal/settings.
type Setting struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	KeyName     string    `gorm:"size:50;unique;not null;index" json:"key_name"`
	Value       string    `gorm:"type:text;not null" json:"value"`
	Description string    `gorm:"type:text" json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}
