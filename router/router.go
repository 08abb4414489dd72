package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/waitlist-app/config"
	"github.com/yeremiapane/waitlist-app/controllers"
	"github.com/yeremiapane/waitlist-app/middlewares"
	"github.com/yeremiapane/waitlist-app/services"
	"github.com/yeremiapane/waitlist-app/utils"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	clock := utils.NewRealClock()

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	restaurantCtrl := controllers.NewRestaurantController(db)
	waitlistCtrl := controllers.NewWaitlistController(db, clock)
	paymentSvc := services.NewPaymentService(db, clock,
		cfg.MidtransServerKey, cfg.MidtransEnv == "production", cfg.HoldingFee)
	paymentCtrl := controllers.NewPaymentController(paymentSvc)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Customer bisa melihat restoran dan antriannya tanpa login
	r.GET("/restaurants", restaurantCtrl.GetAllRestaurants)
	r.GET("/restaurant/:restaurant_id", restaurantCtrl.GetRestaurantByID)
	r.GET("/restaurant/:restaurant_id/waitlist", waitlistCtrl.GetWaitlist)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/profile", userCtrl.GetProfile)

	// Pengelolaan antrian (role restaurant, admin selalu boleh)
	staff := auth.Group("/")
	staff.Use(middlewares.RequireRoles("restaurant"))
	{
		staff.POST("/restaurant", restaurantCtrl.CreateRestaurant)
		staff.POST("/restaurant/:restaurant_id/update_wait_time", restaurantCtrl.UpdateWaitTime)
		staff.POST("/waitlist/:entry_id/status", waitlistCtrl.UpdateStatus)
		staff.PUT("/waitlist/:entry_id/position", waitlistCtrl.UpdatePosition)
		staff.DELETE("/waitlist/:entry_id", waitlistCtrl.RemoveEntry)
		staff.POST("/waitlist/:entry_id/mark-paid", paymentCtrl.MarkPaid)
		staff.POST("/waitlist/:entry_id/refund", paymentCtrl.RefundEntry)
	}

	// Customer yang sudah login
	auth.POST("/restaurant/:restaurant_id/waitlist", waitlistCtrl.AddToWaitlist)
	auth.GET("/waitlist/:entry_id/refund-eligibility", waitlistCtrl.CheckRefundEligibility)
	auth.POST("/waitlist/:entry_id/pay", paymentCtrl.CreateHoldingCharge)
	auth.POST("/waitlist/:entry_id/pay/verify", paymentCtrl.VerifyPayment)

	// WebSocket dashboard antrian
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("", controllers.WaitlistStreamHandler)
	}

	return r
}
