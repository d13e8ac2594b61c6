package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Port != "8089" {
		t.Errorf("Expected Port to be 8089, got %s", cfg.Port)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Scanner.MaxWorkers != 4 {
		t.Errorf("Expected MaxWorkers to be 4, got %d", cfg.Scanner.MaxWorkers)
	}

	if !cfg.Scanner.IncludeMain {
		t.Error("Expected IncludeMain to default to true")
	}

	if cfg.Quote.MaxRetries != 3 {
		t.Errorf("Expected Quote MaxRetries to be 3, got %d", cfg.Quote.MaxRetries)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("SCAN_MAX_WORKERS", "8")
	os.Setenv("SCAN_USE_RESONANCE", "true")
	os.Setenv("LOG_LEVEL", "info")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("SCAN_MAX_WORKERS")
		os.Unsetenv("SCAN_USE_RESONANCE")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}

	if cfg.Scanner.MaxWorkers != 8 {
		t.Errorf("Expected MaxWorkers to be 8, got %d", cfg.Scanner.MaxWorkers)
	}

	if !cfg.Scanner.UseResonance {
		t.Error("Expected UseResonance to be true")
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected LogLevel to be info, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	os.Setenv("ENV", "invalid")
	defer os.Unsetenv("ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateInvalidWorkers(t *testing.T) {
	os.Setenv("SCAN_MAX_WORKERS", "0")
	defer os.Unsetenv("SCAN_MAX_WORKERS")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when SCAN_MAX_WORKERS is 0, got nil")
	}
}

func TestValidateInvalidPriceRange(t *testing.T) {
	os.Setenv("SCAN_MIN_PRICE", "100")
	os.Setenv("SCAN_MAX_PRICE", "10")

	defer func() {
		os.Unsetenv("SCAN_MIN_PRICE")
		os.Unsetenv("SCAN_MAX_PRICE")
	}()

	_, err := Load()
	if err == nil {
		t.Error("Expected error when min price exceeds max price, got nil")
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsFloat(t *testing.T) {
	os.Setenv("TEST_FLOAT", "12.5")
	defer os.Unsetenv("TEST_FLOAT")

	value := getEnvAsFloat("TEST_FLOAT", 1.0)
	if value != 12.5 {
		t.Errorf("Expected value to be 12.5, got %v", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
