package config

import (
	"os"
	"strconv"
	"time"
)

// LedgerConfig carries the analytics settings: the reserved category names
// excluded from regular totals, the default trend window, and the request
// rate limit.
type LedgerConfig struct {
	SavingsCategory  string
	TransferCategory string
	TrendWindow      int
	RateLimit        int
	RateLimitWindow  time.Duration
	UploadDir        string
}

func LoadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		SavingsCategory:  getEnv("LEDGER_SAVINGS_CATEGORY", "Tabungan"),
		TransferCategory: getEnv("LEDGER_TRANSFER_CATEGORY", "Transfer"),
		TrendWindow:      getEnvAsInt("LEDGER_TREND_WINDOW", 6),
		RateLimit:        getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:  getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		UploadDir:        getEnv("UPLOAD_DIR", "./uploads"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
