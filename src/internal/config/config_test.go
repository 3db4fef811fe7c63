package config

import (
	"strings"
	"testing"
)

func TestNormalizeConnectionString(t *testing.T) {
	got := normalizeConnectionString("Host=db;Port=5432;Database=wallet_db;Username=app;Password=secret;Timeout=30")
	want := "host=db port=5432 dbname=wallet_db user=app password=secret connect_timeout=30 sslmode=disable"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestNormalizeConnectionStringKeepsSSLMode(t *testing.T) {
	got := normalizeConnectionString("Host=db;Database=wallet_db;SSLMode=require")
	if !strings.Contains(got, "sslmode=require") {
		t.Fatalf("expected sslmode to be preserved, got %q", got)
	}
	if strings.Contains(got, "sslmode=disable") {
		t.Fatalf("expected no sslmode default, got %q", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.StartingBalance.String() != "100" {
		t.Fatalf("expected starting balance 100, got %s", cfg.StartingBalance.String())
	}
	if cfg.IdempotencyTTLHours != 24 {
		t.Fatalf("expected 24 hour idempotency TTL, got %d", cfg.IdempotencyTTLHours)
	}
	if cfg.ChannelKeyHash == "" {
		t.Fatal("expected channel key hash to be derived from the default key")
	}
}

func TestLoadRejectsBadStartingBalance(t *testing.T) {
	t.Setenv("STARTING_BALANCE", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric starting balance")
	}
}

func TestLoadRejectsNegativeStartingBalance(t *testing.T) {
	t.Setenv("STARTING_BALANCE", "-5")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative starting balance")
	}
}
