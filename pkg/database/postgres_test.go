package database

import (
	"testing"

	"github.com/zlin/chanscan/pkg/config"
)

func TestNewWithoutURL(t *testing.T) {
	cfg := &config.Config{}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error when DATABASE_URL is empty, got nil")
	}
}

func TestNewWithBadURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL: "not a valid dsn",
		},
	}

	_, err := New(cfg)
	if err == nil {
		t.Fatal("Expected error for malformed database URL, got nil")
	}
}
