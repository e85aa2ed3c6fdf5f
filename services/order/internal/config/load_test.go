package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("DATABASE_URL", ":memory:")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAYMENT_API_URL", "https://api.pay.example/v1")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec")
	t.Setenv("ORDER_EVENTS_TOPIC", "")
	t.Setenv("ORDER_INDEX", "orders_v2")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("AUTH_URL", "")
	t.Setenv("ES_URL", "")

	cfg := Load("")

	assert.Equal(t, "order", cfg.ServiceName)
	assert.Equal(t, "order_events", cfg.OrderEventsTopic)
	assert.Equal(t, "orders_v2", cfg.OrderIndex)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []byte("whsec"), cfg.PaymentWebhookSecret)
	assert.Equal(t, "https://api.pay.example/v1", cfg.PaymentAPIURL)
}
