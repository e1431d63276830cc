package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates service configuration values.
type Config struct {
	HTTP      HTTPConfig
	Gateway   GatewayConfig
	Storage   StorageConfig
	Events    EventsConfig
	Reconcile ReconcileConfig
}

// HTTPConfig governs the API server.
type HTTPConfig struct {
	Port int
}

// GatewayConfig describes the MAIB ECOMM endpoints and the merchant's
// client-certificate identity.
type GatewayConfig struct {
	// MerchantHandler is the base URL for registration/status/revert calls.
	MerchantHandler string
	// ClientHandler is the payer-facing redirect base URL.
	ClientHandler string

	CertFile    string
	KeyFile     string
	KeyPassword string

	// Language for gateway-hosted payment pages.
	Language string
	// Method selects the registration flow; only "sms" is implemented.
	Method string
	// ClientIP is sent as client_ip_addr when a payment carries no payer IP.
	// Defaults to loopback, matching gateways that accept a placeholder.
	ClientIP string

	Timeout time.Duration
}

// StorageConfig describes the payments table.
type StorageConfig struct {
	PaymentsTable string
}

// EventsConfig describes the optional Kafka event publisher.
type EventsConfig struct {
	Brokers []string
	Topic   string
}

// ReconcileConfig governs the status-check sweep.
type ReconcileConfig struct {
	Interval time.Duration
}

const (
	defaultPort              = 8080
	defaultLanguage          = "en"
	defaultMethod            = "sms"
	defaultClientIP          = "127.0.0.1"
	defaultGatewayTimeout    = 30 * time.Second
	defaultPaymentsTable     = "payments"
	defaultEventsTopic       = "payment.state-changed"
	defaultReconcileInterval = time.Minute
)

var ErrMissingMerchantHandler = errors.New("missing MAIB_MERCHANT_HANDLER")
var ErrMissingClientHandler = errors.New("missing MAIB_CLIENT_HANDLER")

// Load reads configuration from environment variables, applying defaults.
//
// Recognized variables:
//   - PORT
//   - MAIB_MERCHANT_HANDLER, MAIB_CLIENT_HANDLER (required)
//   - MAIB_CERT_FILE, MAIB_KEY_FILE, MAIB_KEY_PASSWORD
//   - MAIB_LANGUAGE (default "en"), MAIB_METHOD (default "sms")
//   - MAIB_CLIENT_IP (default "127.0.0.1")
//   - MAIB_TIMEOUT (Go duration, default 30s)
//   - PAYMENTS_TABLE (default "payments")
//   - KAFKA_BROKERS (comma separated; empty disables events), KAFKA_TOPIC
//   - RECONCILE_INTERVAL (Go duration, default 1m)
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			Port: parseIntWithDefault("PORT", defaultPort),
		},
		Gateway: GatewayConfig{
			MerchantHandler: os.Getenv("MAIB_MERCHANT_HANDLER"),
			ClientHandler:   os.Getenv("MAIB_CLIENT_HANDLER"),
			CertFile:        os.Getenv("MAIB_CERT_FILE"),
			KeyFile:         os.Getenv("MAIB_KEY_FILE"),
			KeyPassword:     os.Getenv("MAIB_KEY_PASSWORD"),
			Language:        valueOrDefault("MAIB_LANGUAGE", defaultLanguage),
			Method:          valueOrDefault("MAIB_METHOD", defaultMethod),
			ClientIP:        valueOrDefault("MAIB_CLIENT_IP", defaultClientIP),
			Timeout:         parseDurationWithDefault("MAIB_TIMEOUT", defaultGatewayTimeout),
		},
		Storage: StorageConfig{
			PaymentsTable: valueOrDefault("PAYMENTS_TABLE", defaultPaymentsTable),
		},
		Events: EventsConfig{
			Brokers: splitCSV(os.Getenv("KAFKA_BROKERS")),
			Topic:   valueOrDefault("KAFKA_TOPIC", defaultEventsTopic),
		},
		Reconcile: ReconcileConfig{
			Interval: parseDurationWithDefault("RECONCILE_INTERVAL", defaultReconcileInterval),
		},
	}

	if cfg.Gateway.MerchantHandler == "" {
		return Config{}, ErrMissingMerchantHandler
	}
	if cfg.Gateway.ClientHandler == "" {
		return Config{}, ErrMissingClientHandler
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDurationWithDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
