package config

import (
	"time"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Log           LogConfig           `yaml:"log"`
	Compliance    ComplianceConfig    `yaml:"compliance"`
	Detector      DetectorConfig      `yaml:"detector"`
	Storage       StorageConfig       `yaml:"storage"`
	Cache         CacheConfig         `yaml:"cache"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type ServerConfig struct {
	IP        string     `yaml:"ip"`
	Port      int        `yaml:"port"`
	StaticDir string     `yaml:"static_dir"`
	Auth      AuthConfig `yaml:"auth"`
}

type AuthConfig struct {
	Enabled bool          `yaml:"enabled"`
	Secret  string        `yaml:"secret"`
	TTL     time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// ComplianceConfig selects the engine mode and overrides the photo
// requirements most deployments need to tune. Everything else lives in
// the engine's threshold set.
type ComplianceConfig struct {
	Mode         string `yaml:"mode"` // standard | lenient
	TargetWidth  int    `yaml:"target_width"`
	TargetHeight int    `yaml:"target_height"`
	MinFileKB    int    `yaml:"min_file_kb"`
	MaxFileKB    int    `yaml:"max_file_kb"`
}

// DetectorConfig configures the optional face detection cascade.
type DetectorConfig struct {
	Enabled     bool    `yaml:"enabled"`
	CascadePath string  `yaml:"cascade_path"`
	MinSize     int     `yaml:"min_size"`
	MaxSize     int     `yaml:"max_size"`
	MinQuality  float64 `yaml:"min_quality"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite
	Dir    string `yaml:"dir"`
}

type CacheConfig struct {
	Driver string        `yaml:"driver"` // memory | redis | none
	TTL    time.Duration `yaml:"ttl"`
	Redis  RedisConfig   `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

type ObservabilityConfig struct {
	Enabled bool `yaml:"enabled"`
}
