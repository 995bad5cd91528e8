package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.PaymentIntentTTL)
	assert.Equal(t, "Asia/Manila", cfg.DefaultTimezone)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAYMENT_INTENT_TTL", "45m")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AMQP_EXCHANGE", "parish.events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.PaymentIntentTTL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "parish.events", cfg.AMQPExchange)
}
