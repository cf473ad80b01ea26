package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := f[name]; ok {
		return v, nil
	}
	return "", errors.New("secret not found")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("EVENT_SINK", "")
	t.Setenv("GATEWAY_TIMEOUT", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("CURRENCY", "")
	t.Setenv("POSTGRES_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "none", cfg.EventSink)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "http://localhost:5174", cfg.FrontendURL)
	assert.Equal(t, "usd", cfg.Currency)
	assert.False(t, cfg.AuditLogEnabled())
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("FRONTEND_URL", "https://shop.example.com/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.StoreDriver)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, "https://shop.example.com", cfg.FrontendURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("AWS_USE_SECRETS", "")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("GATEWAY_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.GatewayTimeout)
}

func TestValidate_RejectsUnknownDrivers(t *testing.T) {
	cfg := &Config{JWTSecret: "s", StoreDriver: "mongo", EventSink: "none"}
	assert.Error(t, cfg.Validate())

	cfg = &Config{JWTSecret: "s", StoreDriver: "file", EventSink: "sqs"}
	assert.Error(t, cfg.Validate())
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{StripeSecretKey: "env-key", PayPalClientID: "env-id"}

	ApplySecrets(context.Background(), cfg, fakeSecrets{
		"payments/STRIPE_SECRET_KEY": "sm-key",
		"auth/JWT_SECRET":            "sm-jwt",
	})

	assert.Equal(t, "sm-key", cfg.StripeSecretKey)
	assert.Equal(t, "sm-jwt", cfg.JWTSecret)
	assert.Equal(t, "env-id", cfg.PayPalClientID)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresUser: "u", PostgresPassword: "p", PostgresDB: "shop",
		PostgresPort: "5432", PostgresSSLMode: "disable", PostgresTimeZone: "UTC",
	}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5432 sslmode=disable TimeZone=UTC", cfg.PostgresDSN())
	assert.True(t, cfg.AuditLogEnabled())
}
