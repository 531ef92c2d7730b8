package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	IdentityFirebase = "firebase"
	IdentityJWT      = "jwt"

	PaymentStripe = "stripe"
	PaymentStub   = "stub"
)

type Config struct {
	APIPort string

	IdentityProvider   string
	FirebaseServiceKey string // base64-encoded service account JSON
	JWTKey             []byte
	JWTExp             time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PaymentProvider    string
	StripeSecret       string
	PaymentStubAutoPay bool
	SiteDomain         string

	CORSAllowedOrigins []string

	EventQueueName      string
	EventDedupTTL       time.Duration
	LeaderboardCacheTTL time.Duration
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the process environment without touching .env files.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:             getEnv("API_PORT", "3000"),
		IdentityProvider:    getEnv("IDENTITY_PROVIDER", IdentityFirebase),
		FirebaseServiceKey:  getEnv("FB_SERVICE_KEY", ""),
		JWTKey:              []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:              time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnv("DB_PORT", "5432"),
		DBUser:              getEnv("DB_USER", "user"),
		DBPassword:          getEnv("DB_PASSWORD", "password"),
		DBName:              getEnv("DB_NAME", "contest_hub_db"),
		DBSslMode:           getEnv("DB_SSLMODE", "disable"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		PaymentProvider:     getEnv("PAYMENT_PROVIDER", PaymentStripe),
		StripeSecret:        getEnv("STRIPE_SECRET", ""),
		PaymentStubAutoPay:  getEnvAsBool("PAYMENT_STUB_AUTO_PAY", true),
		SiteDomain:          strings.TrimRight(getEnv("SITE_DOMAIN", "http://localhost:5173"), "/"),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		EventQueueName:      getEnv("EVENT_QUEUE_NAME", "contest_events_queue"),
		EventDedupTTL:       time.Duration(getEnvAsInt("EVENT_DEDUP_TTL_SECONDS", 86400)) * time.Second,
		LeaderboardCacheTTL: time.Duration(getEnvAsInt("LEADERBOARD_CACHE_TTL_SECONDS", 300)) * time.Second,
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
