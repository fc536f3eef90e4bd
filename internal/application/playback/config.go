package playback

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/penwyp/go-replay-player/internal/player"
)

// PlayConfig contains configuration for the play command
type PlayConfig struct {
	// Recording chunks, played as one recording
	Recordings []string

	Player player.Config

	// Live ingestion
	Follow  bool
	LiveURL string

	// Rendering
	FrameRate float64
	Headless  bool
	SeekStep  time.Duration
	Input     *os.File // keyboard, stdin by default
	Output    io.Writer

	Concurrency int
}

// Validate checks if the configuration is valid and fills defaults
func (c *PlayConfig) Validate() error {
	if len(c.Recordings) == 0 && c.LiveURL == "" {
		return errors.New("a recording file or --live URL is required")
	}
	if c.Follow && len(c.Recordings) != 1 {
		return errors.New("--follow needs exactly one recording file")
	}
	if c.LiveURL != "" && !strings.HasPrefix(c.LiveURL, "ws://") && !strings.HasPrefix(c.LiveURL, "wss://") {
		return fmt.Errorf("live URL must use ws:// or wss://, got %q", c.LiveURL)
	}
	if c.Follow || c.LiveURL != "" {
		c.Player.LiveMode = true
	}

	if c.FrameRate == 0 {
		c.FrameRate = 60
	}
	if c.FrameRate < 1 || c.FrameRate > 1000 {
		return fmt.Errorf("frame rate must be between 1 and 1000, got %v", c.FrameRate)
	}
	if c.SeekStep == 0 {
		c.SeekStep = 5 * time.Second
	}
	if c.Input == nil {
		c.Input = os.Stdin
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	return c.Player.Validate()
}
