package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is consulted when no explicit path or env override is set.
const DefaultConfigPath = ".config.yaml"

// Loader reads configuration from defaults, an optional yaml file and
// environment overrides, in that order.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader reading from the default config path.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      DefaultConfigPath,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load assembles the effective configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			// Missing .env is fine, the process environment still applies.
			_ = err
		}
	}

	path := l.path
	if env := os.Getenv("PHOTOCHECK_CONFIG"); env != "" {
		path = env
	}

	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	} else {
		path = ""
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   path,
	}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PHOTOCHECK_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PHOTOCHECK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PHOTOCHECK_AUTH_SECRET"); v != "" {
		cfg.Server.Auth.Secret = v
	}
	if v := os.Getenv("PHOTOCHECK_REDIS_ADDR"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = v
	}
	if v := os.Getenv("PHOTOCHECK_CASCADE"); v != "" {
		cfg.Detector.Enabled = true
		cfg.Detector.CascadePath = v
	}
}

// Validate rejects configurations the server cannot start with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	switch cfg.Compliance.Mode {
	case "", "standard", "lenient":
	default:
		return fmt.Errorf("invalid compliance mode: %s", cfg.Compliance.Mode)
	}
	if cfg.Compliance.TargetWidth <= 0 || cfg.Compliance.TargetHeight <= 0 {
		return fmt.Errorf("invalid target dimensions: %dx%d",
			cfg.Compliance.TargetWidth, cfg.Compliance.TargetHeight)
	}
	if cfg.Compliance.MinFileKB < 0 || cfg.Compliance.MaxFileKB < cfg.Compliance.MinFileKB {
		return fmt.Errorf("invalid file size bounds: [%d, %d] KB",
			cfg.Compliance.MinFileKB, cfg.Compliance.MaxFileKB)
	}
	if cfg.Server.Auth.Enabled && cfg.Server.Auth.Secret == "" {
		return fmt.Errorf("auth enabled but no secret configured")
	}
	switch cfg.Cache.Driver {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache driver: %s", cfg.Cache.Driver)
	}
	if cfg.Cache.Driver == "redis" && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("redis cache requires an address")
	}
	return nil
}
