package models

import (
	"time"
)

// TimestampModel carries the audit columns shared by mutable tables
type TimestampModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
