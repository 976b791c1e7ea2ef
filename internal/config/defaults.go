package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 4310,
			Host: "localhost",
		},
		Feed: FeedConfig{
			Ticker:        "",
			LookbackDays:  90,
			BatchSizeDays: 7,
			CacheDir:      "./data/cache",
			CacheTTLHours: 6,
			MaxConcurrent: 4,
			DayEventCap:   20,
		},
		Keys: KeysConfig{},
		Logging: LoggingConfig{
			Level:    "info",
			FilePath: "logs/stockfeed.log",
		},
	}
}
