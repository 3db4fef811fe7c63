package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=wallet_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"

type Config struct {
	DatabaseDSN         string `env:"DATABASE_DSN"`
	MigrationsDir       string `env:"MIGRATIONS_DIR"`
	HTTPAddr            string `env:"HTTP_ADDR" envDefault:":8080"`
	ChannelID           string `env:"CHANNEL_ID" envDefault:"WalletApp"`
	ChannelKey          string `env:"CHANNEL_KEY" envDefault:"WalletKey001"`
	ChannelKeyHash      string `env:"CHANNEL_KEY_HASH"`
	RawStartingBalance  string `env:"STARTING_BALANCE" envDefault:"100"`
	IdempotencyTTLHours int    `env:"IDEMPOTENCY_TTL_HOURS" envDefault:"24"`
	ExpirySweepMinutes  int    `env:"EXPIRY_SWEEP_MINUTES" envDefault:"15"`

	StartingBalance decimal.Decimal `env:"-"`
}

func Load() (Config, error) {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		cfg.DatabaseDSN = defaultConnectionString
	}
	cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)

	if strings.TrimSpace(cfg.MigrationsDir) == "" {
		cfg.MigrationsDir = filepath.Join("src", "migrations")
	}

	starting, err := decimal.NewFromString(strings.TrimSpace(cfg.RawStartingBalance))
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTING_BALANCE %q: %w", cfg.RawStartingBalance, err)
	}
	if starting.IsNegative() {
		return Config{}, fmt.Errorf("STARTING_BALANCE must not be negative, got %s", starting.String())
	}
	cfg.StartingBalance = starting

	if cfg.IdempotencyTTLHours <= 0 {
		return Config{}, fmt.Errorf("IDEMPOTENCY_TTL_HOURS must be positive, got %d", cfg.IdempotencyTTLHours)
	}
	if cfg.ExpirySweepMinutes <= 0 {
		return Config{}, fmt.Errorf("EXPIRY_SWEEP_MINUTES must be positive, got %d", cfg.ExpirySweepMinutes)
	}

	if strings.TrimSpace(cfg.ChannelKeyHash) == "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.ChannelKey), bcrypt.DefaultCost)
		if err != nil {
			return Config{}, fmt.Errorf("hash channel key: %w", err)
		}
		cfg.ChannelKeyHash = string(hashed)
	}

	return cfg, nil
}

func normalizeConnectionString(raw string) string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
