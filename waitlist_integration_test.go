package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/waitlist-app/config"
	"github.com/yeremiapane/waitlist-app/models"
	"github.com/yeremiapane/waitlist-app/router"
	"github.com/yeremiapane/waitlist-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndWaitlistFlow menguji flow utama:
// 0. Register owner + customer, login -> token
// 1. Owner membuat restoran (refund window 0 supaya langsung eligible)
// 2. Customer masuk antrian
// 3. Owner set wait time, posisi, mark paid
// 4. Cek refund eligibility -> eligible
// 5. Seat customer; transisi kedua ditolak
func TestEndToEndWaitlistFlow(t *testing.T) {
	db := setupIntegrationDB()
	cfg := &config.Config{HoldingFee: 20000, MidtransEnv: "sandbox"}
	r := router.SetupRouter(db, cfg)

	ownerToken := registerAndLogin(t, r, "owner@warungtekko.id", "restaurant")
	customerToken := registerAndLogin(t, r, "budi@example.com", "customer")

	restaurantID := createRestaurantTest(t, r, ownerToken)
	entryID := joinWaitlistTest(t, r, customerToken, restaurantID)

	updateWaitTimeTest(t, r, ownerToken, restaurantID)
	setPositionTest(t, r, ownerToken, entryID)
	markPaidTest(t, r, ownerToken, entryID)
	checkEligibilityTest(t, r, customerToken, entryID)
	seatEntryTest(t, r, ownerToken, entryID)
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.WaitlistEntry{},
	)
	if err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func request(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func registerAndLogin(t *testing.T, r *gin.Engine, email, role string) string {
	w := request(t, r, http.MethodPost, "/register", "", map[string]string{
		"email":    email,
		"password": "rahasia-123",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(t, r, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "rahasia-123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, ok := dataOf(t, w)["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func createRestaurantTest(t *testing.T, r *gin.Engine, token string) string {
	w := request(t, r, http.MethodPost, "/restaurant", token, map[string]interface{}{
		"name":                  "Warung Tekko",
		"address":               "Jl. Sudirman 1",
		"phone":                 "0211234567",
		"refund_window_minutes": 0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	id, ok := dataOf(t, w)["id"].(string)
	require.True(t, ok)
	return id
}

func joinWaitlistTest(t *testing.T, r *gin.Engine, token, restaurantID string) string {
	w := request(t, r, http.MethodPost, "/restaurant/"+restaurantID+"/waitlist", token, map[string]interface{}{
		"customer_name": "Budi",
		"party_size":    4,
		"phone_number":  "0812000001",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Equal(t, "waiting", data["status"])
	assert.Equal(t, "unpaid", data["payment_status"])

	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

func updateWaitTimeTest(t *testing.T, r *gin.Engine, token, restaurantID string) {
	w := request(t, r, http.MethodPost, "/restaurant/"+restaurantID+"/update_wait_time", token,
		map[string]int{"wait_time": 35})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(35), dataOf(t, w)["current_wait_time"])

	// Customer tanpa role restaurant ditolak
	w = request(t, r, http.MethodPost, "/restaurant/"+restaurantID+"/update_wait_time", "",
		map[string]int{"wait_time": 35})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func setPositionTest(t *testing.T, r *gin.Engine, token, entryID string) {
	w := request(t, r, http.MethodPut, "/waitlist/"+entryID+"/position", token,
		map[string]int{"position": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(1), dataOf(t, w)["position"])
}

func markPaidTest(t *testing.T, r *gin.Engine, token, entryID string) {
	w := request(t, r, http.MethodPost, "/waitlist/"+entryID+"/mark-paid", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "paid", dataOf(t, w)["payment_status"])
}

func checkEligibilityTest(t *testing.T, r *gin.Engine, token, entryID string) {
	w := request(t, r, http.MethodGet, "/waitlist/"+entryID+"/refund-eligibility", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Equal(t, true, data["eligible"])
	assert.Equal(t, float64(0), data["refund_window"])
}

func seatEntryTest(t *testing.T, r *gin.Engine, token, entryID string) {
	w := request(t, r, http.MethodPost, "/waitlist/"+entryID+"/status", token,
		map[string]string{"status": "seated"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Equal(t, "seated", data["status"])
	assert.Nil(t, data["position"])

	// Status final, transisi lanjutan ditolak
	w = request(t, r, http.MethodPost, "/waitlist/"+entryID+"/status", token,
		map[string]string{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)
}
