package config

import "time"

// DefaultConfig returns the configuration used when no file overrides exist.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:        "0.0.0.0",
			Port:      8080,
			StaticDir: "./web",
			Auth: AuthConfig{
				Enabled: false,
				Secret:  "",
				TTL:     time.Hour,
			},
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Compliance: ComplianceConfig{
			Mode:         "standard",
			TargetWidth:  600,
			TargetHeight: 600,
			MinFileKB:    20,
			MaxFileKB:    500,
		},
		Detector: DetectorConfig{
			Enabled:     false,
			CascadePath: "data/cascade/facefinder",
			MinSize:     60,
			MaxSize:     1200,
			MinQuality:  5.0,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Dir:    "data",
		},
		Cache: CacheConfig{
			Driver: "memory",
			TTL:    5 * time.Minute,
		},
		Observability: ObservabilityConfig{
			Enabled: false,
		},
	}
}
