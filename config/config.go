package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	aws_pkg "github.com/codmenta/Merify/pkg/aws"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Port string
	Env  string

	// Document store
	DataDir        string
	StoreDriver    string
	RedisURL       string
	DocumentsTable string

	// Payment audit log (enabled when PostgresHost is set)
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	// Gateways
	StripeSecretKey      string
	StripePublishableKey string
	StripeWebhookSecret  string
	StripeAPIURL         string
	PayPalClientID       string
	PayPalClientSecret   string
	PayPalMode           string
	FrontendURL          string
	Currency             string
	GatewayTimeout       time.Duration

	// Events
	EventSink          string
	PaymentSNSTopicARN string
	KafkaBrokers       []string
	KafkaTopic         string

	AllowedOrigins    string
	JWTSecret         string
	CloudWatchEnabled bool
}

// SecretGetter is the subset of the Secrets Manager client used for overrides.
type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Load reads configuration from the environment, after loading a .env file
// when one exists, with an optional Secrets Manager override.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Debug("no .env file found, using process environment")
	}

	cfg := fromEnv()

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if awsCfg, err := aws_pkg.LoadAWSConfig(ctx); err == nil {
			ApplySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg))
		} else {
			zap.L().Warn("AWS config unavailable, skipping secrets override", zap.Error(err))
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv() *Config {
	timeout, err := time.ParseDuration(getEnv("GATEWAY_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Config{
		Port:                 getEnv("PORT", "8000"),
		Env:                  getEnv("ENV", "development"),
		DataDir:              getEnv("DATA_DIR", "./data"),
		StoreDriver:          strings.ToLower(getEnv("STORE_DRIVER", "file")),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DocumentsTable:       getEnv("DDB_TABLE_DOCUMENTS", "storefront-documents"),
		PostgresUser:         os.Getenv("POSTGRES_USER"),
		PostgresPassword:     os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:           os.Getenv("POSTGRES_DB"),
		PostgresHost:         os.Getenv("POSTGRES_HOST"),
		PostgresPort:         getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:      getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:     getEnv("POSTGRES_TIMEZONE", "UTC"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		StripePublishableKey: os.Getenv("STRIPE_PUBLISHABLE_KEY"),
		StripeWebhookSecret:  os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAPIURL:         os.Getenv("STRIPE_API_URL"),
		PayPalClientID:       os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret:   os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalMode:           strings.ToLower(getEnv("PAYPAL_MODE", "sandbox")),
		FrontendURL:          strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5174"), "/"),
		Currency:             strings.ToLower(getEnv("CURRENCY", "usd")),
		GatewayTimeout:       timeout,
		EventSink:            strings.ToLower(getEnv("EVENT_SINK", "none")),
		PaymentSNSTopicARN:   os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
		KafkaBrokers:         splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:           getEnv("KAFKA_TOPIC", "payment-events"),
		AllowedOrigins:       os.Getenv("ALLOWED_ORIGINS"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CloudWatchEnabled:    os.Getenv("CLOUDWATCH_ENABLED") == "true",
	}
}

// ApplySecrets overrides gateway and auth secrets with values from Secrets Manager.
// Missing secrets keep the environment value.
func ApplySecrets(ctx context.Context, cfg *Config, sm SecretGetter) {
	overrides := map[string]*string{
		"payments/STRIPE_SECRET_KEY":      &cfg.StripeSecretKey,
		"payments/STRIPE_WEBHOOK_SECRET":  &cfg.StripeWebhookSecret,
		"payments/STRIPE_PUBLISHABLE_KEY": &cfg.StripePublishableKey,
		"payments/PAYPAL_CLIENT_ID":       &cfg.PayPalClientID,
		"payments/PAYPAL_CLIENT_SECRET":   &cfg.PayPalClientSecret,
		"auth/JWT_SECRET":                 &cfg.JWTSecret,
		"payments/POSTGRES_PASSWORD":      &cfg.PostgresPassword,
	}
	for name, field := range overrides {
		if v, err := sm.GetSecret(ctx, name); err == nil && v != "" {
			*field = v
		}
	}
}

// Validate reports configuration that would keep the service from starting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("missing required environment variable JWT_SECRET")
	}
	switch c.StoreDriver {
	case "file", "redis", "dynamodb":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.EventSink {
	case "none", "sns", "kafka":
	default:
		return fmt.Errorf("unsupported EVENT_SINK %q", c.EventSink)
	}
	return nil
}

// AuditLogEnabled reports whether payment sessions are recorded in Postgres.
func (c *Config) AuditLogEnabled() bool {
	return c.PostgresHost != ""
}

// PostgresDSN builds the gorm postgres connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
