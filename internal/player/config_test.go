package player

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConfigValidateFillsDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, cfg.Speed)
	assert.Equal(t, []float64{1, 2, 4, 8}, cfg.SpeedOption)
	assert.Equal(t, 10*time.Second, cfg.InactiveThreshold)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 576, cfg.Height)
	assert.NotNil(t, cfg.Tags)
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative speed", mutate: func(c *Config) { c.Speed = -1 }},
		{name: "zero speed option", mutate: func(c *Config) { c.SpeedOption = []float64{1, 0} }},
		{name: "NaN speed option", mutate: func(c *Config) { c.SpeedOption = []float64{1, math.NaN()} }},
		{name: "infinite speed option", mutate: func(c *Config) { c.SpeedOption = []float64{math.Inf(1)} }},
		{name: "NaN speed", mutate: func(c *Config) { c.Speed = math.NaN() }},
		{name: "negative threshold", mutate: func(c *Config) { c.InactiveThreshold = -time.Second }},
		{name: "negative width", mutate: func(c *Config) { c.Width = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)
		})
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeConfig(t, "player.toml", `
autoPlay = false
speed = 2.0
speedOption = [0.5, 1.0, 2.0]
skipInactive = false
inactiveThreshold = "30s"
width = 1280
unknownKey = "ignored"

[tags]
checkout = "#ff0000"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.False(t, cfg.AutoPlay)
	assert.Equal(t, 2.0, cfg.Speed)
	assert.Equal(t, []float64{0.5, 1, 2}, cfg.SpeedOption)
	assert.False(t, cfg.SkipInactive)
	assert.Equal(t, 30*time.Second, cfg.InactiveThreshold)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 576, cfg.Height)
	assert.True(t, cfg.ShowController)
	assert.Equal(t, map[string]string{"checkout": "#ff0000"}, cfg.Tags)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfig(t, "player.yaml", `
speed: 4
liveMode: true
inactiveThreshold: 2m
tags:
  error: red
somethingElse: 1
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.AutoPlay)
	assert.Equal(t, 4.0, cfg.Speed)
	assert.True(t, cfg.LiveMode)
	assert.Equal(t, 2*time.Minute, cfg.InactiveThreshold)
	assert.Equal(t, "red", cfg.Tags["error"])
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "player.json", `{}`))
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "bad.yaml", "speed: [not a number"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "neg.toml", "speed = -1.0"))
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))

	_, err = LoadConfig(writeConfig(t, "nan.yaml", "speedOption: [1, .nan]"))
	assert.True(t, errors.Is(err, model.ErrInvalidArgument), "got %v", err)

}
