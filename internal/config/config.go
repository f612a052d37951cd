package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Port        string
	CORSOrigin  string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Pix PixConfig

	WebhookSecret     string
	PublicURL         string
	FeePercent        float64
	PayoutConcurrency int
}

// PixConfig holds credentials and transport material for the payment gateway.
type PixConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	ReceiverKey  string
	CertFile     string
	KeyFile      string
	CertB64      string
	KeyB64       string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "fiado"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		Port:        getenv("PORT", "8080"),
		CORSOrigin:  getenv("CORS_ORIGIN", "*"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "fiado"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("REDIS_DB", 0),

		Pix: PixConfig{
			BaseURL:      strings.TrimRight(getenv("PIX_BASE_URL", ""), "/"),
			ClientID:     strings.TrimSpace(getenv("PIX_CLIENT_ID", "")),
			ClientSecret: strings.TrimSpace(getenv("PIX_CLIENT_SECRET", "")),
			ReceiverKey:  strings.TrimSpace(getenv("PIX_KEY", "")),
			CertFile:     getenv("PIX_CERT_FILE", ""),
			KeyFile:      getenv("PIX_KEY_FILE", ""),
			CertB64:      getenv("PIX_CERT_B64", ""),
			KeyB64:       getenv("PIX_KEY_B64", ""),
		},

		WebhookSecret:     strings.TrimSpace(getenv("WEBHOOK_SECRET", "")),
		PublicURL:         strings.TrimRight(getenv("PUBLIC_URL", ""), "/"),
		FeePercent:        getenvFloat("PLATFORM_FEE_PERCENT", 0),
		PayoutConcurrency: getenvInt("PAYOUT_CONCURRENCY", 5),
	}
}

// Validate reports every missing required setting at once so operators can fix
// the environment in one pass. Startup aborts when it returns an error.
func (c Config) Validate() error {
	var missing []string

	if c.Pix.BaseURL == "" {
		missing = append(missing, "PIX_BASE_URL")
	}
	if c.Pix.ClientID == "" {
		missing = append(missing, "PIX_CLIENT_ID")
	}
	if c.Pix.ClientSecret == "" {
		missing = append(missing, "PIX_CLIENT_SECRET")
	}
	if c.Pix.ReceiverKey == "" {
		missing = append(missing, "PIX_KEY")
	}
	if c.WebhookSecret == "" {
		missing = append(missing, "WEBHOOK_SECRET")
	}
	if c.DBName == "" {
		missing = append(missing, "DATABASE_NAME")
	}

	hasCertFiles := c.Pix.CertFile != "" && c.Pix.KeyFile != ""
	hasCertB64 := c.Pix.CertB64 != "" && c.Pix.KeyB64 != ""
	if c.IsProduction() && !hasCertFiles && !hasCertB64 {
		missing = append(missing, "PIX_CERT_FILE+PIX_KEY_FILE or PIX_CERT_B64+PIX_KEY_B64")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.FeePercent < 0 || c.FeePercent >= 100 {
		return fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0, 100), got %v", c.FeePercent)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
