package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN               string        `validate:"required"`
	Environment         string        `validate:"oneof=development production"`
	MigrationsDir       string        `validate:"required"`
	LockTimeout         time.Duration `validate:"gt=0"`
	MaintenanceInterval time.Duration `validate:"gt=0"`
}

func Load() (*Config, error) {
	// A missing .env file is fine; plain environment variables still work.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:               os.Getenv("DB_DSN"),
		Environment:         os.Getenv("ENV"),
		MigrationsDir:       os.Getenv("MIGRATIONS_DIR"),
		LockTimeout:         durationEnv("LOCK_TIMEOUT", 3*time.Second),
		MaintenanceInterval: durationEnv("MAINTENANCE_INTERVAL", 5*time.Minute),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "migrations"
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Bare numbers are read as seconds.
	if sec, err := strconv.Atoi(raw); err == nil {
		return time.Duration(sec) * time.Second
	}
	log.Printf("cannot parse %s=%q, using default %s", key, raw, fallback)
	return fallback
}
