// Package config loads the optional kwinctl config file. All values
// have working defaults; command-line flags override the file.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the tool's ambient settings.
type Config struct {
	// TimeoutMS is the reply timeout for every remote call.
	TimeoutMS int `yaml:"timeout_ms"`
	// Debug enables debug logging (same as -d).
	Debug bool `yaml:"debug"`
	// Journal controls the best-effort KWin journal fetch in debug
	// output.
	Journal bool `yaml:"journal"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TimeoutMS: 5000,
		Journal:   true,
	}
}

// Load reads ~/.config/kwinctl/config.yaml when present, otherwise
// returns the defaults.
func Load() (Config, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Default(), nil
	}
	path := filepath.Join(dir, "kwinctl", "config.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads a config file. Unknown keys are errors so typos
// fail loudly instead of silently falling back to defaults.
func LoadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty file keeps the defaults.
		if err != io.EOF {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMS)
	}
	return nil
}
