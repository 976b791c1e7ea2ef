package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Feed    FeedConfig    `toml:"feed"`
	Keys    KeysConfig    `toml:"keys"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// FeedConfig contains event feed pipeline settings.
type FeedConfig struct {
	Ticker        string `toml:"ticker"`
	LookbackDays  int    `toml:"lookback_days"`
	BatchSizeDays int    `toml:"batch_size_days"`
	CacheDir      string `toml:"cache_dir"`
	CacheTTLHours int    `toml:"cache_ttl_hours"`
	MaxConcurrent int    `toml:"max_concurrent"`
	DayEventCap   int    `toml:"day_event_cap"`
}

// KeysConfig contains upstream provider API credentials.
type KeysConfig struct {
	Finnhub      string `toml:"finnhub"`
	AlphaVantage string `toml:"alphavantage"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `toml:"level"`
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies STOCKFEED_* environment variable overrides to config.
// Provider keys also accept the conventional FINNHUB_API_KEY / ALPHAVANTAGE_API_KEY.
func applyEnvOverrides(config *Config) {
	if port := os.Getenv("STOCKFEED_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("STOCKFEED_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if ticker := os.Getenv("STOCKFEED_TICKER"); ticker != "" {
		config.Feed.Ticker = ticker
	}
	if days := os.Getenv("STOCKFEED_LOOKBACK_DAYS"); days != "" {
		if d, err := strconv.Atoi(days); err == nil {
			config.Feed.LookbackDays = d
		}
	}
	if dir := os.Getenv("STOCKFEED_CACHE_DIR"); dir != "" {
		config.Feed.CacheDir = dir
	}
	if ttl := os.Getenv("STOCKFEED_CACHE_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil {
			config.Feed.CacheTTLHours = h
		}
	}
	if key := os.Getenv("FINNHUB_API_KEY"); key != "" {
		config.Keys.Finnhub = key
	}
	if key := os.Getenv("ALPHAVANTAGE_API_KEY"); key != "" {
		config.Keys.AlphaVantage = key
	}
	if level := os.Getenv("STOCKFEED_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies CLI flag values to config (highest priority).
// Zero values are ignored.
func ApplyFlagOverrides(config *Config, port int, host, ticker string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if ticker != "" {
		config.Feed.Ticker = ticker
	}
}

// Validate checks mandatory configuration and returns a list of issues.
func (c *Config) Validate() []string {
	var issues []string

	if c.Feed.Ticker == "" {
		issues = append(issues, "feed.ticker is required (or STOCKFEED_TICKER / -ticker flag)")
	}
	if c.Feed.LookbackDays < 1 {
		issues = append(issues, "feed.lookback_days must be at least 1")
	}
	if c.Feed.BatchSizeDays < 1 {
		issues = append(issues, "feed.batch_size_days must be at least 1")
	}
	if c.Feed.CacheTTLHours < 1 {
		issues = append(issues, "feed.cache_ttl_hours must be at least 1")
	}
	if c.Feed.MaxConcurrent < 1 {
		issues = append(issues, "feed.max_concurrent must be at least 1")
	}
	if c.Keys.Finnhub == "" {
		issues = append(issues, "keys.finnhub is required (or FINNHUB_API_KEY)")
	}
	if c.Keys.AlphaVantage == "" {
		issues = append(issues, "keys.alphavantage is required (or ALPHAVANTAGE_API_KEY)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}

	return issues
}
