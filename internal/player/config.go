package player

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/penwyp/go-replay-player/internal/core/inactivity"
	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/penwyp/go-replay-player/internal/util"
	"gopkg.in/yaml.v3"
)

// Config contains the player options. Unknown keys in config files are ignored.
type Config struct {
	AutoPlay          bool              `toml:"autoPlay" yaml:"autoPlay"`
	Speed             float64           `toml:"speed" yaml:"speed"`
	SpeedOption       []float64         `toml:"speedOption" yaml:"speedOption"`
	ShowController    bool              `toml:"showController" yaml:"showController"`
	SkipInactive      bool              `toml:"skipInactive" yaml:"skipInactive"`
	InactiveThreshold time.Duration     `toml:"inactiveThreshold" yaml:"inactiveThreshold"`
	Tags              map[string]string `toml:"tags" yaml:"tags"`

	// Viewport forwarded to the replayer on resize
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`

	LiveMode bool `toml:"liveMode" yaml:"liveMode"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AutoPlay:          true,
		Speed:             1,
		SpeedOption:       []float64{1, 2, 4, 8},
		ShowController:    true,
		SkipInactive:      true,
		InactiveThreshold: inactivity.DefaultThreshold,
		Tags:              map[string]string{},
		Width:             1024,
		Height:            576,
	}
}

// Validate fills unset values with defaults and rejects invalid ones.
func (c *Config) Validate() error {
	defaults := DefaultConfig()
	if c.Speed == 0 {
		c.Speed = defaults.Speed
	}
	if len(c.SpeedOption) == 0 {
		c.SpeedOption = defaults.SpeedOption
	}
	if c.InactiveThreshold == 0 {
		c.InactiveThreshold = defaults.InactiveThreshold
	}
	if c.Tags == nil {
		c.Tags = map[string]string{}
	}
	if c.Width == 0 {
		c.Width = defaults.Width
	}
	if c.Height == 0 {
		c.Height = defaults.Height
	}

	if !validSpeed(c.Speed) {
		return fmt.Errorf("%w: speed must be positive, got %v", model.ErrInvalidArgument, c.Speed)
	}
	for _, opt := range c.SpeedOption {
		if !validSpeed(opt) {
			return fmt.Errorf("%w: speed options must be positive, got %v", model.ErrInvalidArgument, opt)
		}
	}
	if c.InactiveThreshold < 0 {
		return fmt.Errorf("%w: inactive threshold must be positive, got %v", model.ErrInvalidArgument, c.InactiveThreshold)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: invalid viewport %dx%d", model.ErrInvalidArgument, c.Width, c.Height)
	}
	return nil
}

func validSpeed(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// LoadConfig reads a TOML or YAML config file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		for _, key := range meta.Undecoded() {
			util.LogDebugf("Ignoring unknown config key %q in %s", key.String(), path)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
