package config

import (
	"os"

	"github.com/Skotchmaster/marketplace/pkg/config"
)

type ServiceConfig struct {
	config.Config

	AuthHTTPURL string

	OrderEventsTopic string
	OrderIndex       string

	PaymentAPIURL        string
	PaymentKeyID         string
	PaymentKeySecret     string
	PaymentWebhookSecret []byte
}

func Load(envFile string) ServiceConfig {
	cfg := config.Load(envFile)
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")

	sc := ServiceConfig{
		Config:               cfg,
		AuthHTTPURL:          os.Getenv("AUTH_URL"),
		OrderEventsTopic:     config.EnvDefault("ORDER_EVENTS_TOPIC", "order_events"),
		OrderIndex:           config.EnvDefault("ORDER_INDEX", "orders"),
		PaymentAPIURL:        os.Getenv("PAYMENT_API_URL"),
		PaymentKeyID:         os.Getenv("PAYMENT_KEY_ID"),
		PaymentKeySecret:     os.Getenv("PAYMENT_KEY_SECRET"),
		PaymentWebhookSecret: []byte(os.Getenv("PAYMENT_WEBHOOK_SECRET")),
	}

	config.MustURL(sc.PaymentAPIURL, "PAYMENT_API_URL")
	if sc.AuthHTTPURL != "" {
		config.MustURL(sc.AuthHTTPURL, "AUTH_URL")
	}
	if sc.ESURL != "" {
		config.MustURL(sc.ESURL, "ES_URL")
	}

	return sc
}
