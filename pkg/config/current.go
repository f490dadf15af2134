package config

import (
	"fmt"
	"sync/atomic"
)

// current is the process-wide configuration published by the run command
// and replaced by the file watcher.
var current atomic.Pointer[Config]

// GetConfig returns the published configuration, or nil before the first
// SetConfig or ReloadConfig.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig publishes cfg. Readers holding the previous pointer keep a
// consistent snapshot; configurations are never mutated after publication.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}

// ReloadConfig loads path with environment overrides and publishes the
// result. On any load or validation error the published configuration is
// left untouched.
func ReloadConfig(path string) error {
	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", path, err)
	}
	current.Store(cfg)
	return nil
}
