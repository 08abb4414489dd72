package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/yeremiapane/waitlist-app/models"
	"github.com/yeremiapane/waitlist-app/utils"
	"gorm.io/gorm"
)

// PaymentService menangani holding fee reservasi: charge QRIS lewat Midtrans,
// verifikasi settlement, dan eksekusi refund kalau window-nya sudah terlewati.
type PaymentService struct {
	db         *gorm.DB
	clock      utils.Clock
	core       coreapi.Client
	holdingFee int64
}

func NewPaymentService(db *gorm.DB, clock utils.Clock, serverKey string, production bool, holdingFee int64) *PaymentService {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	s := &PaymentService{
		db:         db,
		clock:      clock,
		holdingFee: holdingFee,
	}
	s.core.New(serverKey, env)
	return s
}

// CreateHoldingCharge membuat charge QRIS untuk holding fee sebuah entry yang
// masih waiting dan belum bayar. Order id gateway disimpan di entry.
func (s *PaymentService) CreateHoldingCharge(entryID string) (*coreapi.ChargeResponse, error) {
	entry, err := s.getEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != StatusWaiting {
		return nil, fmt.Errorf("%w: cannot charge a %s entry", ErrInvalidState, entry.Status)
	}
	if entry.PaymentStatus != PaymentStatusUnpaid {
		return nil, fmt.Errorf("%w: entry already %s", ErrInvalidState, entry.PaymentStatus)
	}

	orderID := uuid.NewString()
	req := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: s.holdingFee,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    entry.ID,
				Name:  "Waitlist holding fee",
				Price: s.holdingFee,
				Qty:   1,
			},
		},
	}

	resp, chargeErr := s.core.ChargeTransaction(req)
	if chargeErr != nil {
		return nil, fmt.Errorf("midtrans charge failed: %w", chargeErr)
	}

	// Order id hanya ditulis kalau entry masih waiting + unpaid
	res := s.db.Model(&models.WaitlistEntry{}).
		Where("id = ? AND status = ? AND payment_status = ?",
			entryID, StatusWaiting, PaymentStatusUnpaid).
		UpdateColumns(map[string]interface{}{
			"payment_ref": orderID,
			"updated_at":  s.clock.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: entry changed while charging", ErrInvalidState)
	}
	return resp, nil
}

// VerifyPayment mengecek status transaksi di gateway; settlement/capture
// menandai entry sebagai paid.
func (s *PaymentService) VerifyPayment(entryID string) (*models.WaitlistEntry, error) {
	entry, err := s.getEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.PaymentRef == "" {
		return nil, fmt.Errorf("%w: no charge to verify", ErrInvalidState)
	}
	if entry.PaymentStatus == PaymentStatusPaid {
		return entry, nil
	}

	status, checkErr := s.core.CheckTransaction(entry.PaymentRef)
	if checkErr != nil {
		return nil, fmt.Errorf("midtrans status check failed: %w", checkErr)
	}

	switch status.TransactionStatus {
	case "settlement", "capture":
		res := s.db.Model(&models.WaitlistEntry{}).
			Where("id = ? AND payment_status = ?", entryID, PaymentStatusUnpaid).
			UpdateColumns(map[string]interface{}{
				"payment_status": PaymentStatusPaid,
				"updated_at":     s.clock.Now(),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		return s.getEntry(entryID)
	}
	return entry, nil
}

// Refund mengeksekusi refund holding fee. Kelayakannya dihitung lewat
// EvaluateRefund; entry yang belum eligible ditolak tanpa menyentuh gateway.
// Refund hanya mengubah payment_status; status antrian tidak ikut berubah.
func (s *PaymentService) Refund(entryID, reason string) (*models.WaitlistEntry, error) {
	entry, err := s.getEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.PaymentStatus == PaymentStatusRefunded {
		return entry, nil
	}
	if entry.PaymentStatus != PaymentStatusPaid {
		return nil, fmt.Errorf("%w: entry is %s, nothing to refund", ErrInvalidState, entry.PaymentStatus)
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

	eligibility := EvaluateRefund(*entry, windowMinutes, s.clock.Now())
	if !eligibility.Eligible {
		return nil, fmt.Errorf("%w: refund window of %d minutes not reached (elapsed %d)",
			ErrInvalidState, eligibility.RefundWindow, eligibility.TimeElapsed)
	}

	if reason == "" {
		reason = "waitlist reservation not honored"
	}
	refundReq := &coreapi.RefundReq{
		Amount: s.holdingFee,
		Reason: reason,
	}
	if _, refundErr := s.core.RefundTransaction(entry.PaymentRef, refundReq); refundErr != nil {
		return nil, fmt.Errorf("midtrans refund failed: %w", refundErr)
	}

	now := s.clock.Now()
	res := s.db.Model(&models.WaitlistEntry{}).
		Where("id = ? AND payment_status = ?", entryID, PaymentStatusPaid).
		UpdateColumns(map[string]interface{}{
			"payment_status": PaymentStatusRefunded,
			"updated_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		fresh, err := s.getEntry(entryID)
		if err != nil {
			return nil, err
		}
		if fresh.PaymentStatus == PaymentStatusRefunded {
			return fresh, nil
		}
		return nil, fmt.Errorf("%w: entry is %s, nothing to refund", ErrInvalidState, fresh.PaymentStatus)
	}

	entry.PaymentStatus = PaymentStatusRefunded
	entry.UpdatedAt = now
	return entry, nil
}

// MarkPaid menandai entry sebagai paid tanpa lewat gateway; dipakai staff untuk
// pembayaran tunai di tempat.
func (s *PaymentService) MarkPaid(entryID string) (*models.WaitlistEntry, error) {
	entry, err := s.getEntry(entryID)
	if err != nil {
		return nil, err
	}
	if entry.PaymentStatus == PaymentStatusPaid {
		return entry, nil
	}
	if entry.PaymentStatus == PaymentStatusRefunded {
		return nil, fmt.Errorf("%w: entry already refunded", ErrInvalidState)
	}

	now := s.clock.Now()
	res := s.db.Model(&models.WaitlistEntry{}).
		Where("id = ? AND payment_status = ?", entryID, PaymentStatusUnpaid).
		UpdateColumns(map[string]interface{}{
			"payment_status": PaymentStatusPaid,
			"updated_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		fresh, err := s.getEntry(entryID)
		if err != nil {
			return nil, err
		}
		if fresh.PaymentStatus == PaymentStatusPaid {
			return fresh, nil
		}
		return nil, fmt.Errorf("%w: entry already refunded", ErrInvalidState)
	}

	entry.PaymentStatus = PaymentStatusPaid
	entry.UpdatedAt = now
	return entry, nil
}

func (s *PaymentService) getEntry(entryID string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := s.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: entry %s", ErrNotFound, entryID)
		}
		return nil, err
	}
	return &entry, nil
}
