package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaitlistEntry struct {
	ID            string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	RestaurantID  *string     `json:"restaurant_id" gorm:"type:varchar(36);index"`
	Restaurant    *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID;references:ID"`
	CustomerName  string      `json:"customer_name" gorm:"type:varchar(255);not null"`
	PartySize     int         `json:"party_size" gorm:"not null"`
	PhoneNumber   string      `json:"phone_number" gorm:"type:varchar(50);not null"`
	Notes         *string     `json:"notes,omitempty" gorm:"type:text"`
	Status        string      `json:"status" gorm:"type:varchar(20);not null;default:'waiting'"`
	Position      *int        `json:"position"`
	PaymentStatus string      `json:"payment_status" gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaymentRef    string      `json:"payment_ref,omitempty" gorm:"type:varchar(64)"` // order id di payment gateway
	CreatedAt     time.Time   `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time   `json:"updated_at" gorm:"not null"`
}

func (e *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
