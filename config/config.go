package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config menampung seluruh konfigurasi proses; diisi dari environment di awal
// dan diteruskan secara eksplisit, tidak ada secret yang di-hardcode.
type Config struct {
	Port              string
	DBDriver          string // "mysql" atau "sqlite"
	DBDSN             string
	JWTSecret         string
	MidtransServerKey string
	MidtransEnv       string // "sandbox" atau "production"
	HoldingFee        int64  // biaya reservasi (holding fee) dalam rupiah
}

func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBDriver:          getEnv("DB_DRIVER", "mysql"),
		DBDSN:             os.Getenv("DB_DSN"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransEnv:       getEnv("MIDTRANS_ENV", "sandbox"),
		HoldingFee:        20000,
	}

	if fee := os.Getenv("WAITLIST_HOLDING_FEE"); fee != "" {
		if parsed, err := strconv.ParseInt(fee, 10, 64); err == nil && parsed > 0 {
			cfg.HoldingFee = parsed
		}
	}

	if cfg.DBDSN == "" {
		// DSN default untuk development lokal
		user := getEnv("DB_USER", "root")
		pass := os.Getenv("DB_PASS")
		host := getEnv("DB_HOST", "127.0.0.1")
		port := getEnv("DB_PORT", "3306")
		name := getEnv("DB_NAME", "waitlist_db")
		cfg.DBDSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			user, pass, host, port, name)
	}

	return cfg
}

// InitDB membuka koneksi database sesuai driver yang dikonfigurasi.
func InitDB(cfg *Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DBDSN), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
