package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/waitlist-app/realtime"
	"github.com/yeremiapane/waitlist-app/services"
	"github.com/yeremiapane/waitlist-app/utils"
)

type PaymentController struct {
	svc *services.PaymentService
}

func NewPaymentController(svc *services.PaymentService) *PaymentController {
	return &PaymentController{svc: svc}
}

// CreateHoldingCharge -> buat charge QRIS untuk holding fee entry
func (pc *PaymentController) CreateHoldingCharge(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	resp, err := pc.svc.CreateHoldingCharge(entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Holding charge created for entry %s", entryID)
	utils.RespondJSON(c, http.StatusCreated, "Holding charge created", resp)
}

// VerifyPayment -> cek status transaksi di gateway, settlement -> paid
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	entry, err := pc.svc.VerifyPayment(entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastPaymentUpdate(*entry)
	utils.RespondJSON(c, http.StatusOK, "Payment status", gin.H{
		"entry_id":       entry.ID,
		"payment_status": entry.PaymentStatus,
	})
}

// RefundEntry -> eksekusi refund holding fee kalau window sudah terlewati
func (pc *PaymentController) RefundEntry(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	// Body opsional
	_ = c.ShouldBindJSON(&req)

	entry, err := pc.svc.Refund(entryID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastPaymentUpdate(*entry)
	utils.InfoLogger.Printf("Entry %s refunded", entry.ID)
	utils.RespondJSON(c, http.StatusOK, "Refund executed", entry)
}

// MarkPaid -> staff menandai pembayaran tunai di tempat
func (pc *PaymentController) MarkPaid(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	entry, err := pc.svc.MarkPaid(entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastPaymentUpdate(*entry)
	utils.RespondJSON(c, http.StatusOK, "Entry marked as paid", entry)
}
