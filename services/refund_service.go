package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/waitlist-app/models"
	"github.com/yeremiapane/waitlist-app/utils"
	"gorm.io/gorm"
)

// DefaultRefundWindowMinutes dipakai kalau restoran belum mengatur window.
const DefaultRefundWindowMinutes = 30

// RefundEligibility adalah hasil perhitungan kelayakan refund.
type RefundEligibility struct {
	Eligible     bool  `json:"eligible"`
	TimeElapsed  int64 `json:"time_elapsed"`
	RefundWindow int   `json:"refund_window"`
}

// EvaluateRefund menghitung kelayakan refund holding fee: total function tanpa
// mutasi dan tanpa error, supaya verdict yang sama selalu bisa direproduksi
// dari state tersimpan plus waktu evaluasi.
func EvaluateRefund(entry models.WaitlistEntry, windowMinutes *int, now time.Time) RefundEligibility {
	window := DefaultRefundWindowMinutes
	if windowMinutes != nil {
		window = *windowMinutes
	}

	anchor := entry.CreatedAt
	if anchor.IsZero() {
		// created_at hilang -> anggap baru dibuat, elapsed 0
		anchor = now
	}
	elapsed := int64(now.Sub(anchor).Minutes())

	return RefundEligibility{
		Eligible:     elapsed >= int64(window) && entry.PaymentStatus == PaymentStatusPaid,
		TimeElapsed:  elapsed,
		RefundWindow: window,
	}
}

// RefundService menggabungkan satu entry dengan refund window restorannya.
type RefundService struct {
	db    *gorm.DB
	clock utils.Clock
}

func NewRefundService(db *gorm.DB, clock utils.Clock) *RefundService {
	return &RefundService{db: db, clock: clock}
}

// CheckEligibility membaca entry plus restoran pemiliknya lalu mengevaluasi.
// Read-only, tidak mengubah baris manapun.
func (s *RefundService) CheckEligibility(entryID string) (*RefundEligibility, error) {
	var entry models.WaitlistEntry
	if err := s.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
		}
		return nil, err
	}

	var windowMinutes *int
	if entry.RestaurantID != nil {
		var restaurant models.Restaurant
		if err := s.db.First(&restaurant, "id = ?", *entry.RestaurantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: restaurant %s", ErrNotFound, *entry.RestaurantID)
			}
			return nil, err
		}
		windowMinutes = restaurant.RefundWindowMinutes
	}

	result := EvaluateRefund(entry, windowMinutes, s.clock.Now())
	return &result, nil
}
