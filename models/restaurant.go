package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID                  string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name                string    `json:"name" gorm:"type:varchar(255);not null"`
	Address             string    `json:"address" gorm:"type:varchar(255)"`
	Phone               string    `json:"phone" gorm:"type:varchar(50)"`
	CurrentWaitTime     int       `json:"current_wait_time" gorm:"not null;default:0"`
	RefundWindowMinutes *int      `json:"refund_window_minutes"` // nil -> default 30 menit
	CreatedAt           time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"not null"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
