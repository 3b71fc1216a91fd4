package cache

import "fmt"

// Driver identifiers supported by the cache.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// New creates a cache based on the provided configuration.
func New(cfg Config) (Cache, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}

	switch driver {
	case DriverNone:
		return noopCache{}, nil
	case DriverMemory:
		return NewMemory(cfg), nil
	case DriverRedis:
		return NewRedis(cfg)
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", driver)
	}
}
