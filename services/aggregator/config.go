// Package aggregator materializes on-chain Ivy/pump-protocol events into
// an in-memory, queryable view and serves it over HTTP/SSE. It mirrors
// the layout of services/indexer: a Config loaded from the environment,
// a Service orchestrator, and a set of worker goroutines wired together
// over channels instead of indexer's single syncer goroutine.
package aggregator

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the aggregator's tunables. LoadFromEnv reads them from
// AGGREGATOR_-prefixed environment variables so it can run alongside
// other services in the same process group without collisions;
// RetryInterval, SolPriceInterval, HotListInterval and RequestTimeout
// are not read from the environment and keep DefaultConfig's values.
type Config struct {
	RPCURL        string
	ProgramID     string
	PriceAPIURL   string
	ListenAddr    string

	DataDir string // durable event log + cursor files

	ScanInterval    time.Duration
	RetryInterval   time.Duration
	SolPriceInterval time.Duration
	HotListInterval time.Duration

	BatchSize  int
	MaxCandles int

	// RedisURL, when set, mirrors the hot-asset list into Redis for
	// read replicas; empty disables the mirror.
	RedisURL string

	// PostgresDSN, when set, enables the best-effort comment-moderation
	// and audit mirror; empty disables it entirely (off the critical
	// path either way).
	PostgresDSN string

	RequestTimeout time.Duration
}

// DefaultConfig returns a Config with the same tunables the original
// Rust binary hard-coded as constants (SCAN_INTERVAL_MS=250,
// RETRY_INTERVAL=250ms, SOL_PRICE_INTERVAL=60s, BATCH_SIZE=1000).
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:       ":8080",
		DataDir:          "./data",
		ScanInterval:     250 * time.Millisecond,
		RetryInterval:    250 * time.Millisecond,
		SolPriceInterval: 60 * time.Second,
		HotListInterval:  10 * time.Second,
		BatchSize:        1000,
		MaxCandles:       2000,
		RequestTimeout:   30 * time.Second,
	}
}

// LoadFromEnv loads configuration from environment variables, falling
// back to DefaultConfig's values for anything unset.
func LoadFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	cfg.RPCURL = os.Getenv("AGGREGATOR_RPC_URL")
	cfg.ProgramID = os.Getenv("AGGREGATOR_PROGRAM_ID")
	cfg.PriceAPIURL = os.Getenv("AGGREGATOR_PRICE_API_URL")

	if addr := os.Getenv("AGGREGATOR_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if dir := os.Getenv("AGGREGATOR_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if ms := os.Getenv("AGGREGATOR_SCAN_INTERVAL_MS"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil {
			cfg.ScanInterval = time.Duration(v) * time.Millisecond
		}
	}
	if batch := os.Getenv("AGGREGATOR_BATCH_SIZE"); batch != "" {
		if v, err := strconv.Atoi(batch); err == nil {
			cfg.BatchSize = v
		}
	}
	if candles := os.Getenv("AGGREGATOR_MAX_CANDLES"); candles != "" {
		if v, err := strconv.Atoi(candles); err == nil {
			cfg.MaxCandles = v
		}
	}

	cfg.RedisURL = os.Getenv("AGGREGATOR_REDIS_URL")
	cfg.PostgresDSN = os.Getenv("AGGREGATOR_POSTGRES_DSN")

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("AGGREGATOR_RPC_URL is required")
	}
	if c.ProgramID == "" {
		return fmt.Errorf("AGGREGATOR_PROGRAM_ID is required")
	}
	if c.PriceAPIURL == "" {
		return fmt.Errorf("AGGREGATOR_PRICE_API_URL is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("AGGREGATOR_DATA_DIR is required")
	}
	if c.BatchSize < 1 || c.BatchSize > 1000 {
		return fmt.Errorf("batch size must be between 1 and 1000")
	}
	return nil
}
