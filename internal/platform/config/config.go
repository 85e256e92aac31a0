package config

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	defaultJWTSecret   = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer   = "vault-ledger"
	defaultBTCPriceUSD = "86406"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	LedgerStore       string
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	ClientURL         string
	RateLimit         string

	// Notification fan-out
	RedisURL         string
	KafkaBrokers     []string
	KafkaEventsTopic string
	NotifyWorkers    int
	NotifyQueueSize  int

	// Outbound email
	SMTPHost   string
	SMTPPort   int
	SMTPSecure bool
	SMTPUser   string
	SMTPPass   string
	NotifyFrom string

	// Payment webhooks
	BTCPriceUSD   decimal.Decimal
	WebhookSecret string

	// Operator bootstrap
	AdminID    string
	AdminEmail string
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("LEDGER_STORE", StorePostgres)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	v.SetDefault("CLIENT_URL", "http://localhost:8000")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_EVENTS_TOPIC", "vault.events")
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 1024)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_SECURE", false)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("NOTIFY_FROM", "")
	v.SetDefault("BTC_PRICE_USD", defaultBTCPriceUSD)
	v.SetDefault("WEBHOOK_SECRET", "")
	v.SetDefault("ADMIN_ID", "")
	v.SetDefault("ADMIN_EMAIL", "")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	SetDefaults(viper.GetViper())
	viper.AutomaticEnv()

	return FromViper(viper.GetViper()), nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	cfg.LedgerStore = strings.ToLower(v.GetString("LEDGER_STORE"))
	if cfg.LedgerStore != StoreMemory {
		cfg.LedgerStore = StorePostgres
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	// e.g. "60m", "1h"
	jwtExpiryStr := v.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil || jwtExpiryDuration <= 0 {
		jwtExpiryDuration = time.Hour
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = defaultJWTIssuer
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")
	cfg.ClientURL = v.GetString("CLIENT_URL")
	cfg.RateLimit = v.GetString("RATE_LIMIT")

	cfg.RedisURL = v.GetString("REDIS_URL")
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.KafkaEventsTopic = v.GetString("KAFKA_EVENTS_TOPIC")
	cfg.NotifyWorkers = v.GetInt("NOTIFY_WORKERS")
	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = 4
	}
	cfg.NotifyQueueSize = v.GetInt("NOTIFY_QUEUE_SIZE")
	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = 1024
	}

	cfg.SMTPHost = SanitizeHost(v.GetString("SMTP_HOST"))
	cfg.SMTPPort = v.GetInt("SMTP_PORT")
	if cfg.SMTPPort <= 0 {
		cfg.SMTPPort = 587
	}
	cfg.SMTPSecure = v.GetBool("SMTP_SECURE")
	cfg.SMTPUser = v.GetString("SMTP_USER")
	cfg.SMTPPass = v.GetString("SMTP_PASS")
	cfg.NotifyFrom = v.GetString("NOTIFY_FROM")
	if cfg.NotifyFrom == "" {
		cfg.NotifyFrom = cfg.SMTPUser
	}
	if cfg.NotifyFrom == "" {
		cfg.NotifyFrom = "no-reply@example.com"
	}
	if cfg.SMTPHost == "" {
		log.Println("Warning: SMTP_HOST not set. Payment confirmation emails will be skipped.")
	}

	price, err := decimal.NewFromString(v.GetString("BTC_PRICE_USD"))
	if err != nil || !price.IsPositive() {
		log.Printf("Warning: Invalid value for BTC_PRICE_USD ('%s'). Defaulting to %s.\n", v.GetString("BTC_PRICE_USD"), defaultBTCPriceUSD)
		price = decimal.RequireFromString(defaultBTCPriceUSD)
	}
	cfg.BTCPriceUSD = price
	cfg.WebhookSecret = v.GetString("WEBHOOK_SECRET")

	cfg.AdminID = v.GetString("ADMIN_ID")
	cfg.AdminEmail = v.GetString("ADMIN_EMAIL")

	return cfg
}

// SanitizeHost reduces a pasted URL ("http://mail.example.com:25/x") to its hostname.
func SanitizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
		return raw
	}
	return strings.SplitN(raw, "/", 2)[0]
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
