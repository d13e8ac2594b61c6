package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 所有环境变量只在这里读取
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Upstream services
	Quote  QuoteConfig
	Oracle OracleConfig

	// Scanner defaults
	Scanner ScannerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// QuoteConfig holds the realtime quote source configuration (东方财富)
type QuoteConfig struct {
	BaseURL     string
	FallbackURL string // legacy HTML quote board, used when the JSON API is down
	MaxRetries  int
	CacheTTL    time.Duration
	RateLimit   float64 // requests per second toward the quote host
}

// OracleConfig holds the chan analysis service configuration
type OracleConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ScannerConfig holds default scan parameters
type ScannerConfig struct {
	RecencyDays  int // 近N天买点
	HistoryDays  int // K线回看天数
	MinPrice     float64
	MaxPrice     float64
	UseResonance bool
	MaxWorkers   int

	IncludeMain bool // 主板 (60/00)
	IncludeGEM  bool // 创业板 (300/301)
	IncludeSTAR bool // 科创板 (688)
	IncludeBSE  bool // 北交所 (8/43)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 只有这个函数调用 os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// Upstream services
		Quote: QuoteConfig{
			BaseURL:     getEnv("QUOTE_BASE_URL", "https://push2.eastmoney.com"),
			FallbackURL: getEnv("QUOTE_FALLBACK_URL", ""),
			MaxRetries:  getEnvAsInt("QUOTE_MAX_RETRIES", 3),
			CacheTTL:    getEnvAsDuration("QUOTE_CACHE_TTL", "1m"),
			RateLimit:   getEnvAsFloat("QUOTE_RATE_LIMIT", 5.0),
		},
		Oracle: OracleConfig{
			BaseURL: getEnv("ORACLE_BASE_URL", "http://localhost:8100"),
			Timeout: getEnvAsDuration("ORACLE_TIMEOUT", "60s"),
		},

		// Scanner defaults
		Scanner: ScannerConfig{
			RecencyDays:  getEnvAsInt("SCAN_RECENCY_DAYS", 3),
			HistoryDays:  getEnvAsInt("SCAN_HISTORY_DAYS", 365),
			MinPrice:     getEnvAsFloat("SCAN_MIN_PRICE", 0),
			MaxPrice:     getEnvAsFloat("SCAN_MAX_PRICE", 10000),
			UseResonance: getEnvAsBool("SCAN_USE_RESONANCE", false),
			MaxWorkers:   getEnvAsInt("SCAN_MAX_WORKERS", 4),
			IncludeMain:  getEnvAsBool("SCAN_INCLUDE_MAIN", true),
			IncludeGEM:   getEnvAsBool("SCAN_INCLUDE_GEM", false),
			IncludeSTAR:  getEnvAsBool("SCAN_INCLUDE_STAR", false),
			IncludeBSE:   getEnvAsBool("SCAN_INCLUDE_BSE", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Scanner.MaxWorkers < 1 {
		return fmt.Errorf("SCAN_MAX_WORKERS must be >= 1")
	}

	if c.Scanner.MinPrice > c.Scanner.MaxPrice {
		return fmt.Errorf("SCAN_MIN_PRICE must not exceed SCAN_MAX_PRICE")
	}

	if c.Quote.MaxRetries < 1 {
		return fmt.Errorf("QUOTE_MAX_RETRIES must be >= 1")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
