package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI           string
	DBName             string
	JWTSecret          string
	RazorpayKeyID      string
	RazorpayKeySecret  string
	RazorpayBaseURL    string
	RedisAddr          string
	KafkaBrokers       string
	PriceFallback      string
	CheckoutSessionTTL time.Duration
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:           requireEnv("MONGO_URI"),
		DBName:             getEnvOrDefault("DB_NAME", "snapeat"),
		JWTSecret:          requireEnv("JWT_SECRET"),
		RazorpayKeyID:      requireEnv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:  requireEnv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:    getEnvOrDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		RedisAddr:          getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:       getEnvOrDefault("KAFKA_BROKERS", ""),
		PriceFallback:      getEnvOrDefault("PRICE_FALLBACK", "discounted"),
		CheckoutSessionTTL: getDurationEnv("CHECKOUT_SESSION_TTL", 30, time.Minute),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// requireEnv refuses to start without the value. Gateway credentials in
// particular must never have compiled-in defaults.
func requireEnv(key string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		log.Fatalf("ENV %s is required", key)
	}
	return value
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
