package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/waitlist-app/realtime"
	"github.com/yeremiapane/waitlist-app/services"
	"github.com/yeremiapane/waitlist-app/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB  *gorm.DB
	svc *services.RestaurantService
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{
		DB:  db,
		svc: services.NewRestaurantService(db),
	}
}

// CreateRestaurant -> mendaftarkan restoran baru
func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req struct {
		Name                string `json:"name" binding:"required"`
		Address             string `json:"address"`
		Phone               string `json:"phone"`
		RefundWindowMinutes *int   `json:"refund_window_minutes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant, err := rc.svc.Create(services.CreateRestaurantInput{
		Name:                req.Name,
		Address:             req.Address,
		Phone:               req.Phone,
		RefundWindowMinutes: req.RefundWindowMinutes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("New restaurant created: %s (%s)", restaurant.Name, restaurant.ID)
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

// GetAllRestaurants -> daftar seluruh restoran
func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	restaurants, err := rc.svc.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetRestaurantByID -> detail satu restoran
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurant_id")
	if !ok {
		return
	}

	restaurant, err := rc.svc.Get(restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateWaitTime -> staff menimpa advertised wait time
func (rc *RestaurantController) UpdateWaitTime(c *gin.Context) {
	restaurantID, ok := parseID(c, "restaurant_id")
	if !ok {
		return
	}

	var req struct {
		WaitTime *int `json:"wait_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	restaurant, err := rc.svc.SetWaitTime(restaurantID, *req.WaitTime)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	realtime.BroadcastWaitTime(*restaurant)
	utils.InfoLogger.Printf("Restaurant %s wait time set to %d minutes", restaurant.ID, restaurant.CurrentWaitTime)
	utils.RespondJSON(c, http.StatusOK, "Wait time updated", restaurant)
}
