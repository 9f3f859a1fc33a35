package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8003, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.RedisHost)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, 168*time.Hour, cfg.CartTTLDuration())
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Second, cfg.OrderSubmitTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("ORDER_SERVICE_URL", "http://order.internal:8004")
	t.Setenv("ORDER_SUBMIT_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://bengalboats.com.bd,https://admin.bengalboats.com.bd")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://order.internal:8004", cfg.OrderServiceURL)
	assert.Equal(t, 3*time.Second, cfg.OrderSubmitTimeout)
	assert.Len(t, cfg.CORSAllowedOrigins, 2)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidOrderServiceURL(t *testing.T) {
	t.Setenv("ORDER_SERVICE_URL", "order-service")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid ORDER_SERVICE_URL")
}

func TestLoad_InvalidSubmitTimeout(t *testing.T) {
	t.Setenv("ORDER_SUBMIT_TIMEOUT", "-1s")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "ORDER_SUBMIT_TIMEOUT must be positive")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_InvalidCartTTL(t *testing.T) {
	t.Setenv("CART_TTL_HOURS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "CART_TTL_HOURS must be positive")
}

func TestLoad_CheckoutRateLimit(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.CheckoutRateLimitRPS)
	assert.Equal(t, 3, cfg.CheckoutRateLimitBurst)

	t.Setenv("CHECKOUT_RATE_LIMIT_RPS", "0")
	t.Setenv("CHECKOUT_RATE_LIMIT_BURST", "0")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.CheckoutRateLimitRPS)
}

func TestLoad_InvalidCheckoutRateLimit(t *testing.T) {
	t.Setenv("CHECKOUT_RATE_LIMIT_BURST", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "CHECKOUT_RATE_LIMIT_BURST")
}
