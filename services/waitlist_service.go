package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/waitlist-app/models"
	"github.com/yeremiapane/waitlist-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status entry waitlist
const (
	StatusWaiting   = "waiting"
	StatusSeated    = "seated"
	StatusCancelled = "cancelled"
)

// Status pembayaran holding fee
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Batas retry untuk reassignment posisi yang kena konflik serialisasi.
const positionRetryLimit = 3

// WaitlistService memegang state machine status dan pengaturan posisi antrian
// per restoran.
type WaitlistService struct {
	db    *gorm.DB
	clock utils.Clock
}

func NewWaitlistService(db *gorm.DB, clock utils.Clock) *WaitlistService {
	return &WaitlistService{db: db, clock: clock}
}

type EnqueueInput struct {
	RestaurantID string
	CustomerName string
	PartySize    int
	PhoneNumber  string
	Notes        *string
}

// Enqueue menambahkan customer baru ke antrian restoran dengan status waiting.
func (s *WaitlistService) Enqueue(in EnqueueInput) (*models.WaitlistEntry, error) {
	if in.PartySize < 1 {
		return nil, fmt.Errorf("%w: party_size must be at least 1", ErrInvalidArgument)
	}

	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, "id = ?", in.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: restaurant %s", ErrNotFound, in.RestaurantID)
		}
		return nil, err
	}

	now := s.clock.Now()
	entry := models.WaitlistEntry{
		RestaurantID:  &restaurant.ID,
		CustomerName:  in.CustomerName,
		PartySize:     in.PartySize,
		PhoneNumber:   in.PhoneNumber,
		Notes:         in.Notes,
		Status:        StatusWaiting,
		PaymentStatus: PaymentStatusUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetStatus menjalankan transisi status: waiting -> seated | cancelled.
// Seated dan cancelled bersifat final; mengulang status yang sama diterima
// sebagai no-op. Masuk ke status final mengeluarkan entry dari antrian
// (position dikosongkan).
func (s *WaitlistService) SetStatus(entryID, newStatus string) (*models.WaitlistEntry, error) {
	switch newStatus {
	case StatusWaiting, StatusSeated, StatusCancelled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, newStatus)
	}

	entry, err := s.getEntry(entryID)
	if err != nil {
		return nil, err
	}

	if entry.Status == newStatus {
		// idempotent no-op
		return entry, nil
	}
	if entry.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: status %s is final", ErrInvalidTransition, entry.Status)
	}

	// Compare-and-set: update hanya menang kalau barisnya masih waiting,
	// penulis yang kalah tidak boleh menimpa status final.
	now := s.clock.Now()
	res := s.db.Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ?", entryID, StatusWaiting).
		UpdateColumns(map[string]interface{}{
			"status":     newStatus,
			"position":   nil,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Keduluan penulis lain; baca ulang dan klasifikasikan hasilnya
		fresh, err := s.getEntry(entryID)
		if err != nil {
			return nil, err
		}
		if fresh.Status == newStatus {
			return fresh, nil
		}
		return nil, fmt.Errorf("%w: status %s is final", ErrInvalidTransition, fresh.Status)
	}

	entry.Status = newStatus
	entry.Position = nil
	entry.UpdatedAt = now
	return entry, nil
}

// SetPosition mengatur posisi duduk entry yang masih waiting. Kalau posisi
// sudah dipegang entry waiting lain di restoran yang sama, pemegang lama
// digeser ke slot kosong berikutnya ke atas, sehingga posisi tetap unik.
func (s *WaitlistService) SetPosition(entryID string, position int) (*models.WaitlistEntry, error) {
	if position < 0 {
		return nil, fmt.Errorf("%w: position must not be negative", ErrInvalidArgument)
	}

	var lastErr error
	for attempt := 0; attempt < positionRetryLimit; attempt++ {
		entry, err := s.setPositionOnce(entryID, position)
		if err == nil {
			return entry, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: position update failed after %d attempts: %v",
		ErrConflict, positionRetryLimit, lastErr)
}

func (s *WaitlistService) setPositionOnce(entryID string, position int) (*models.WaitlistEntry, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Baris yang terlibat dikunci (SELECT ... FOR UPDATE) supaya dua
	// reassignment bersamaan tidak sama-sama melihat slot yang sama kosong.
	var entry models.WaitlistEntry
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entry, "id = ?", entryID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
		}
		return nil, err
	}
	if entry.Status != StatusWaiting {
		tx.Rollback()
		return nil, fmt.Errorf("%w: cannot reposition a %s entry", ErrInvalidState, entry.Status)
	}

	now := s.clock.Now()
	if entry.RestaurantID != nil {
		// Geser pemegang lama dari posisi yang diminta
		var holder models.WaitlistEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("restaurant_id = ? AND status = ? AND position = ? AND id <> ?",
				*entry.RestaurantID, StatusWaiting, position, entry.ID).
			First(&holder).Error
		switch {
		case err == nil:
			next, ferr := nextFreePosition(tx, *entry.RestaurantID, position+1, entry.ID)
			if ferr != nil {
				tx.Rollback()
				return nil, ferr
			}
			if err := tx.Model(&holder).UpdateColumns(map[string]interface{}{
				"position":   next,
				"updated_at": now,
			}).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// posisi masih kosong
		default:
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Model(&entry).UpdateColumns(map[string]interface{}{
		"position":   position,
		"updated_at": now,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	entry.Position = &position
	entry.UpdatedAt = now
	return &entry, nil
}

// nextFreePosition mencari slot posisi kosong pertama mulai dari from ke atas
// di antara entry waiting milik restoran. skipID dikecualikan karena posisinya
// sedang dipindahkan.
func nextFreePosition(tx *gorm.DB, restaurantID string, from int, skipID string) (int, error) {
	var taken []int
	err := tx.Model(&models.WaitlistEntry{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("restaurant_id = ? AND status = ? AND position IS NOT NULL AND id <> ?",
			restaurantID, StatusWaiting, skipID).
		Pluck("position", &taken).Error
	if err != nil {
		return 0, err
	}

	used := make(map[int]bool, len(taken))
	for _, p := range taken {
		used[p] = true
	}
	pos := from
	for used[pos] {
		pos++
	}
	return pos, nil
}

// Remove menghapus entry tanpa syarat, apapun statusnya. Dipakai untuk koreksi
// di luar alur normal (entry duplikat, permintaan customer).
func (s *WaitlistService) Remove(entryID string) error {
	res := s.db.Delete(&models.WaitlistEntry{}, "id = ?", entryID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
	}
	return nil
}

// ListQueue mengembalikan seluruh entry restoran, terbaru dulu. Ini urutan
// tampilan; prioritas duduk ditentukan field position, bukan urutan list.
func (s *WaitlistService) ListQueue(restaurantID string) ([]models.WaitlistEntry, error) {
	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: restaurant %s", ErrNotFound, restaurantID)
		}
		return nil, err
	}

	var entries []models.WaitlistEntry
	err := s.db.Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *WaitlistService) getEntry(entryID string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := s.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
		}
		return nil, err
	}
	return &entry, nil
}
