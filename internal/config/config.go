// Package config loads the kinectosc configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/kinectosc/internal/dispatch"
	"github.com/ayusman/kinectosc/internal/forward"
	"github.com/ayusman/kinectosc/internal/sensor"
	"github.com/ayusman/kinectosc/internal/tracker"
)

// DefaultHTTPAddr is the default listen address of the control API.
const DefaultHTTPAddr = "127.0.0.1:8080"

// Config represents the complete kinectosc configuration.
type Config struct {
	// Target is the initial network target as "a.b.c.d:port". Empty keeps
	// the target persisted in the data directory.
	Target   string         `yaml:"target"`
	DataDir  string         `yaml:"data_dir"`
	HTTPAddr string         `yaml:"http_addr"`
	Tray     bool           `yaml:"tray"`
	Sensor   SensorConfig   `yaml:"sensor"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Tracker  TrackerConfig  `yaml:"tracker"`
}

// SensorConfig selects the sensor recording and gesture database.
type SensorConfig struct {
	Recording string  `yaml:"recording"`
	Gestures  string  `yaml:"gestures"`
	Speed     float64 `yaml:"speed"` // 1 = real time, 0 = as fast as possible
	Loop      bool    `yaml:"loop"`
}

// DispatchConfig contains message addressing and selection settings.
type DispatchConfig struct {
	AddressMode string         `yaml:"address_mode"` // split, named
	MaxDistance float64        `yaml:"max_distance"` // meters, exclusive
	Reference   sensor.Point3D `yaml:"reference"`
}

// TrackerConfig contains body tracker settings.
type TrackerConfig struct {
	KeepStaleIDs bool `yaml:"keep_stale_ids"`
}

// DefaultDataDir returns ~/.kinectosc, or .kinectosc if the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kinectosc"
	}
	return filepath.Join(home, ".kinectosc")
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		HTTPAddr: DefaultHTTPAddr,
		Tray:     true,
		Sensor: SensorConfig{
			Speed: 1,
			Loop:  true,
		},
		Dispatch: DispatchConfig{
			AddressMode: string(dispatch.AddressSplit),
			MaxDistance: tracker.DefaultMaxDistance,
		},
	}
}

// Load reads and parses a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.HTTPAddr == "" {
		return errors.New("http_addr is required")
	}
	if c.Target != "" {
		if _, err := forward.ParseTargetString(c.Target); err != nil {
			return fmt.Errorf("target: %w", err)
		}
	}
	if c.Sensor.Speed < 0 {
		return fmt.Errorf("sensor.speed must not be negative, got %v", c.Sensor.Speed)
	}
	if _, err := dispatch.ParseAddressMode(c.Dispatch.AddressMode); err != nil {
		return fmt.Errorf("dispatch.address_mode: %w", err)
	}
	if c.Dispatch.MaxDistance <= 0 {
		return fmt.Errorf("dispatch.max_distance must be positive, got %v", c.Dispatch.MaxDistance)
	}
	return nil
}

// DatabasePath returns the SQLite database path inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "kinectosc.db")
}

// Selector returns the closest-person selection settings.
func (c *Config) Selector() tracker.SelectorConfig {
	return tracker.SelectorConfig{
		Reference:   c.Dispatch.Reference,
		MaxDistance: c.Dispatch.MaxDistance,
	}
}

// Dispatcher returns the dispatcher settings. Call Validate first.
func (c *Config) Dispatcher() dispatch.Config {
	mode, _ := dispatch.ParseAddressMode(c.Dispatch.AddressMode)
	return dispatch.Config{
		Mode:     mode,
		Selector: c.Selector(),
	}
}

// ReplayConfig returns the replay device settings.
func (c *Config) ReplayConfig() sensor.ReplayConfig {
	return sensor.ReplayConfig{
		Path:  c.Sensor.Recording,
		Speed: c.Sensor.Speed,
		Loop:  c.Sensor.Loop,
	}
}

// TrackerOptions returns the body tracker options.
func (c *Config) TrackerOptions() tracker.Options {
	return tracker.Options{KeepStaleIDs: c.Tracker.KeepStaleIDs}
}
