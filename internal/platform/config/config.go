package config

import "time"

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	Store  StoreConfig  `yaml:"store"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// AuthConfig carries session authority settings. The signing secret is never
// read from the config file, only from the environment.
type AuthConfig struct {
	Secret   string        `yaml:"-"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type StoreConfig struct {
	Driver string           `yaml:"driver"`
	SQLite SQLiteStore      `yaml:"sqlite,omitempty"`
	Redis  RedisStoreConfig `yaml:"redis,omitempty"`
}

type SQLiteStore struct {
	DSN string `yaml:"dsn,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}
