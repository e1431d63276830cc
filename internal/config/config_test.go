package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing merchant handler", func(t *testing.T) {
		t.Setenv("MAIB_MERCHANT_HANDLER", "")
		_, err := Load()
		if !errors.Is(err, ErrMissingMerchantHandler) {
			t.Fatalf("expected ErrMissingMerchantHandler, got %v", err)
		}
	})

	t.Run("missing client handler", func(t *testing.T) {
		t.Setenv("MAIB_MERCHANT_HANDLER", "https://gw.example/mh")
		t.Setenv("MAIB_CLIENT_HANDLER", "")
		_, err := Load()
		if !errors.Is(err, ErrMissingClientHandler) {
			t.Fatalf("expected ErrMissingClientHandler, got %v", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("MAIB_MERCHANT_HANDLER", "https://gw.example/mh")
		t.Setenv("MAIB_CLIENT_HANDLER", "https://pay.example/ch")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HTTP.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
		}
		if cfg.Gateway.Language != "en" || cfg.Gateway.Method != "sms" {
			t.Errorf("unexpected gateway defaults: %+v", cfg.Gateway)
		}
		if cfg.Gateway.ClientIP != "127.0.0.1" {
			t.Errorf("expected loopback client IP, got %s", cfg.Gateway.ClientIP)
		}
		if cfg.Gateway.Timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %s", cfg.Gateway.Timeout)
		}
		if cfg.Storage.PaymentsTable != "payments" {
			t.Errorf("expected payments table, got %s", cfg.Storage.PaymentsTable)
		}
		if cfg.Events.Brokers != nil {
			t.Errorf("expected no brokers, got %v", cfg.Events.Brokers)
		}
		if cfg.Reconcile.Interval != time.Minute {
			t.Errorf("expected 1m interval, got %s", cfg.Reconcile.Interval)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("MAIB_MERCHANT_HANDLER", "https://gw.example/mh")
		t.Setenv("MAIB_CLIENT_HANDLER", "https://pay.example/ch")
		t.Setenv("PORT", "9090")
		t.Setenv("MAIB_LANGUAGE", "ro")
		t.Setenv("MAIB_TIMEOUT", "10s")
		t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
		t.Setenv("RECONCILE_INTERVAL", "5m")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HTTP.Port != 9090 {
			t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
		}
		if cfg.Gateway.Language != "ro" {
			t.Errorf("expected language ro, got %s", cfg.Gateway.Language)
		}
		if cfg.Gateway.Timeout != 10*time.Second {
			t.Errorf("expected 10s timeout, got %s", cfg.Gateway.Timeout)
		}
		if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[0] != "broker-1:9092" {
			t.Errorf("unexpected brokers: %v", cfg.Events.Brokers)
		}
		if cfg.Reconcile.Interval != 5*time.Minute {
			t.Errorf("expected 5m interval, got %s", cfg.Reconcile.Interval)
		}
	})
}
