package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/waitlist-app/realtime"
	"github.com/yeremiapane/waitlist-app/services"
	"github.com/yeremiapane/waitlist-app/utils"
	"gorm.io/gorm"
)

type WaitlistController struct {
	DB      *gorm.DB
	svc     *services.WaitlistService
	refunds *services.RefundService
}

func NewWaitlistController(db *gorm.DB, clock utils.Clock) *WaitlistController {
	return &WaitlistController{
		DB:      db,
		svc:     services.NewWaitlistService(db, clock),
		refunds: services.NewRefundService(db, clock),
	}
}

// AddToWaitlist -> customer masuk antrian restoran
func (wc *WaitlistController) AddToWaitlist(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurant_id")
	if !ok {
		return
	}

	var req struct {
		CustomerName string  `json:"customer_name" binding:"required"`
		PartySize    int     `json:"party_size" binding:"required"`
		PhoneNumber  string  `json:"phone_number" binding:"required"`
		Notes        *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := wc.svc.Enqueue(services.EnqueueInput{
		RestaurantID: restaurantID,
		CustomerName: req.CustomerName,
		PartySize:    req.PartySize,
		PhoneNumber:  req.PhoneNumber,
		Notes:        req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastEntryAdded(*entry)
	utils.InfoLogger.Printf("Entry %s added to waitlist of restaurant %s (party of %d)",
		entry.ID, restaurantID, entry.PartySize)
	utils.RespondJSON(c, http.StatusCreated, "Added to waitlist", entry)
}

// GetWaitlist -> seluruh entry restoran, terbaru dulu
func (wc *WaitlistController) GetWaitlist(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurant_id")
	if !ok {
		return
	}

	entries, err := wc.svc.ListQueue(restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waitlist entries", entries)
}

// UpdateStatus -> transisi status entry (waiting -> seated | cancelled)
func (wc *WaitlistController) UpdateStatus(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := wc.svc.SetStatus(entryID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastEntryStatus(*entry)
	utils.InfoLogger.Printf("Entry %s status changed to %s", entry.ID, entry.Status)
	utils.RespondJSON(c, http.StatusOK, "Status updated", entry)
}

// UpdatePosition -> atur prioritas duduk entry yang masih waiting
func (wc *WaitlistController) UpdatePosition(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	var req struct {
		Position *int `json:"position" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	entry, err := wc.svc.SetPosition(entryID, *req.Position)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastEntryPosition(*entry)
	utils.InfoLogger.Printf("Entry %s moved to position %d", entry.ID, *entry.Position)
	utils.RespondJSON(c, http.StatusOK, "Position updated", entry)
}

// RemoveEntry -> hapus entry tanpa syarat (koreksi di luar alur normal)
func (wc *WaitlistController) RemoveEntry(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	if err := wc.svc.Remove(entryID); err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastEntryRemoved(entryID)
	utils.InfoLogger.Printf("Entry %s removed from waitlist", entryID)
	utils.RespondJSON(c, http.StatusOK, "Entry removed", gin.H{
		"entry_id": entryID,
	})
}

// CheckRefundEligibility -> query read-only kelayakan refund holding fee
func (wc *WaitlistController) CheckRefundEligibility(c *gin.Context) {
	entryID, ok := parseID(c, "entry_id")
	if !ok {
		return
	}

	eligibility, err := wc.refunds.CheckEligibility(entryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Refund eligibility", eligibility)
}
