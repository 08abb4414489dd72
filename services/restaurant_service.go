package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/waitlist-app/models"
	"gorm.io/gorm"
)

// RestaurantService menangani data restoran dan advertised wait time.
type RestaurantService struct {
	db *gorm.DB
}

func NewRestaurantService(db *gorm.DB) *RestaurantService {
	return &RestaurantService{db: db}
}

type CreateRestaurantInput struct {
	Name                string
	Address             string
	Phone               string
	RefundWindowMinutes *int
}

func (s *RestaurantService) Create(in CreateRestaurantInput) (*models.Restaurant, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidArgument)
	}
	if in.RefundWindowMinutes != nil && *in.RefundWindowMinutes < 0 {
		return nil, fmt.Errorf("%w: refund_window_minutes must not be negative", ErrInvalidArgument)
	}

	restaurant := models.Restaurant{
		Name:                in.Name,
		Address:             in.Address,
		Phone:               in.Phone,
		CurrentWaitTime:     0,
		RefundWindowMinutes: in.RefundWindowMinutes,
	}
	if err := s.db.Create(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// SetWaitTime menimpa advertised wait time restoran. Nilainya input eksplisit
// dari staff, tidak diturunkan dari panjang antrian.
func (s *RestaurantService) SetWaitTime(restaurantID string, minutes int) (*models.Restaurant, error) {
	if minutes < 0 {
		return nil, fmt.Errorf("%w: wait_time must not be negative", ErrInvalidArgument)
	}

	restaurant, err := s.Get(restaurantID)
	if err != nil {
		return nil, err
	}

	restaurant.CurrentWaitTime = minutes
	if err := s.db.Save(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (s *RestaurantService) Get(restaurantID string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.First(&restaurant, "id = ?", restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: restaurant %s", ErrNotFound, restaurantID)
		}
		return nil, err
	}
	return &restaurant, nil
}

func (s *RestaurantService) List() ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	if err := s.db.Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}
