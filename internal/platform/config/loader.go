package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "forge-server-go/internal/platform/errors"
)

const (
	envConfigPath = "FORGE_CONFIG"
	envJWTSecret  = "FORGE_JWT_SECRET"
	envServerPort = "FORGE_PORT"
	envStoreDrv   = "FORGE_STORE_DRIVER"
	envSQLiteDSN  = "FORGE_SQLITE_DSN"
	envRedisAddr  = "FORGE_REDIS_ADDR"
)

// Loader reads configuration from an optional yaml file plus the environment.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader with .env support enabled.
func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration. The JWT signing secret is
// mandatory: startup is refused when it is absent.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// Missing .env is fine, the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := Default()

	path := l.path
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(
				platformerrors.KindConfig,
				"config.load",
				fmt.Sprintf("failed to parse %s", path),
				err,
			)
		}
	case os.IsNotExist(err):
		path = ""
	default:
		return nil, platformerrors.Wrap(
			platformerrors.KindConfig, "config.load", "failed to read config file", err)
	}

	applyEnvOverrides(cfg)

	cfg.Auth.Secret = os.Getenv(envJWTSecret)
	if cfg.Auth.Secret == "" {
		return nil, platformerrors.New(
			platformerrors.KindConfig,
			"config.load",
			envJWTSecret+" is not set; refusing to start without a signing secret",
		)
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv(envStoreDrv); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv(envSQLiteDSN); v != "" {
		cfg.Store.SQLite.DSN = v
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		cfg.Store.Redis.Addr = v
	}
}
