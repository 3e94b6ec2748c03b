package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	// Payment gateway
	GatewayProvider   string // "xendit" | "midtrans"
	XenditAPIKey      string
	XenditBaseURL     string
	MidtransServerKey string
	MidtransUseProd   bool

	// Shared secret yang dikirim gateway di header X-Callback-Token
	GatewayCallbackToken string

	// Invoice & sweeper
	InvoiceDuration     time.Duration
	SweepInterval       time.Duration
	DownstreamRetryMax  int
	TuitionPeriodsAhead int
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")

	GatewayProvider = GetEnv("PAYMENT_GATEWAY_PROVIDER", "xendit")
	XenditAPIKey = GetEnv("XENDIT_API_KEY")
	XenditBaseURL = GetEnv("XENDIT_BASE_URL", "https://api.xendit.co")
	MidtransServerKey = GetEnv("MIDTRANS_SERVER_KEY")
	MidtransUseProd = GetEnv("MIDTRANS_USE_PROD", "false") == "true"

	GatewayCallbackToken = GetEnv("GATEWAY_CALLBACK_TOKEN")

	InvoiceDuration = time.Duration(getEnvInt("INVOICE_DURATION_HOURS", 24)) * time.Hour
	SweepInterval = time.Duration(getEnvInt("PAYMENT_SWEEP_INTERVAL_MINUTES", 15)) * time.Minute
	DownstreamRetryMax = getEnvInt("DOWNSTREAM_RETRY_MAX", 5)
	TuitionPeriodsAhead = getEnvInt("TUITION_PERIODS_AHEAD", 3)

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	}
	if GatewayCallbackToken == "" {
		log.Println("❌ GATEWAY_CALLBACK_TOKEN belum diset! Webhook akan menolak semua notifikasi.")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
