package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "kafka:9092", want: []string{"kafka:9092"}},
		{name: "trims and skips blanks", in: " a:1 , ,b:2,", want: []string{"a:1", "b:2"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CSV(tt.in))
		})
	}
}

func TestEnvIntDefault(t *testing.T) {
	t.Setenv("ORDER_TEST_PORT", "9091")
	assert.Equal(t, 9091, EnvIntDefault("ORDER_TEST_PORT", 8080))

	t.Setenv("ORDER_TEST_PORT", "not-a-number")
	assert.Equal(t, 8080, EnvIntDefault("ORDER_TEST_PORT", 8080))

	assert.Equal(t, 7, EnvIntDefault("ORDER_TEST_UNSET", 7))
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("SERVICE_NAME", "order")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load("")

	assert.Equal(t, "order", cfg.ServiceName)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []byte("secret"), cfg.JWTAccessSecret)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestIsHTTPURL(t *testing.T) {
	t.Parallel()

	assert.True(t, IsHTTPURL("https://api.payments.example/v1"))
	assert.True(t, IsHTTPURL("http://localhost:9200"))
	assert.False(t, IsHTTPURL("localhost:9200"))
	assert.False(t, IsHTTPURL("ftp://files.example"))
	assert.False(t, IsHTTPURL(""))
}
