package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/waitlist-app/models"
)

// Test di sini hanya menyentuh jalur yang gagal sebelum memanggil gateway;
// charge dan refund sungguhan butuh sandbox Midtrans.

func TestRefundRejectsUnpaidEntry(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Now()}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)
	_, err := svc.Refund(entry.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRefundRejectsInsideWindow(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)
	_, err := svc.MarkPaid(entry.ID)
	require.NoError(t, err)

	// 10 menit setelah dibuat, default window 30 belum terlewati
	clock.now = clock.now.Add(10 * time.Minute)
	_, err = svc.Refund(entry.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	var stored models.WaitlistEntry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, PaymentStatusPaid, stored.PaymentStatus)
}

func TestMarkPaid(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Now()}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)
	updated, err := svc.MarkPaid(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, updated.PaymentStatus)

	// Idempoten
	updated, err = svc.MarkPaid(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, updated.PaymentStatus)

	// Status antrian tidak ikut berubah
	assert.Equal(t, StatusWaiting, updated.Status)
}

func TestMarkPaidRejectsRefundedEntry(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Now()}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")
	require.NoError(t, db.Model(&models.WaitlistEntry{}).
		Where("id = ?", entry.ID).
		Update("payment_status", PaymentStatusRefunded).Error)

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)
	_, err := svc.MarkPaid(entry.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	var stored models.WaitlistEntry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, PaymentStatusRefunded, stored.PaymentStatus)
}

func TestMarkPaidConcurrentCallers(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Now()}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)

	// Penulis yang kalah jatuh ke jalur idempoten, bukan error
	results := make([]error, 4)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.MarkPaid(entry.ID)
		}(i)
	}
	wg.Wait()

	for _, err := range results {
		require.NoError(t, err)
	}

	var stored models.WaitlistEntry
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	assert.Equal(t, PaymentStatusPaid, stored.PaymentStatus)
}

func TestChargeRejectsNonWaitingEntry(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Now()}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")
	_, err := waitlist.SetStatus(entry.ID, StatusCancelled)
	require.NoError(t, err)

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)
	_, err = svc.CreateHoldingCharge(entry.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVerifyWithoutChargeRejected(t *testing.T) {
	db := setupWaitlistTestDB(t)
	restaurant := seedRestaurant(t, db)
	clock := &testClock{now: time.Now()}

	waitlist := NewWaitlistService(db, clock)
	entry := enqueueEntry(t, waitlist, restaurant.ID, "Budi")

	svc := NewPaymentService(db, clock, "SB-Mid-server-test", false, 20000)
	_, err := svc.VerifyPayment(entry.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}
