package config

import "time"

// Default returns the baseline configuration applied before file and
// environment overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			SQLite: SQLiteStore{
				DSN: "forge.db",
			},
		},
	}
}
