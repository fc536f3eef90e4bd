package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/penwyp/go-replay-player/internal/application/playback"
	"github.com/penwyp/go-replay-player/internal/player"
	"github.com/spf13/cobra"
)

type playOptions struct {
	configFile   string
	speed        float64
	skipInactive bool
	threshold    time.Duration
	autoPlay     bool
	noController bool
	tags         map[string]string

	follow   bool
	liveURL  string
	fps      float64
	headless bool
	seekStep time.Duration
	width    int
	height   int
}

var playOpts = &playOptions{}

var playCmd = &cobra.Command{
	Use:   "play [recording...]",
	Short: "Play a recorded session",
	Long: `Plays one recording, given as one or more JSON or JSONL files, with an
interactive controller. When stdout is not a terminal, or with --headless,
events are printed as plain lines and the command exits when playback ends.

Keys:
  space  play / pause        ←/→  seek
  1-4    speed option        s    skip inactive
  p/n    previous / next     P/N  lock previous / next
  t      add tag             o    options popup
  h      help                q    quit`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	bindPlayFlags(playCmd, playOpts)
}

func bindPlayFlags(cmd *cobra.Command, o *playOptions) {
	defaults := player.DefaultConfig()

	// Player options
	cmd.Flags().StringVarP(&o.configFile, "config", "c", "",
		"Player options file (.toml, .yaml)")
	cmd.Flags().Float64Var(&o.speed, "speed", defaults.Speed,
		"Playback speed multiplier")
	cmd.Flags().BoolVar(&o.skipInactive, "skip-inactive", defaults.SkipInactive,
		"Fast-forward through inactive periods")
	cmd.Flags().DurationVar(&o.threshold, "threshold", defaults.InactiveThreshold,
		"Idle gap that counts as inactivity")
	cmd.Flags().BoolVar(&o.autoPlay, "autoplay", defaults.AutoPlay,
		"Start playing immediately")
	cmd.Flags().BoolVar(&o.noController, "no-controller", false,
		"Hide the controller bar")
	cmd.Flags().StringToStringVar(&o.tags, "tag", nil,
		"Tag label and color, repeatable (e.g. --tag bug=red)")
	cmd.Flags().IntVar(&o.width, "width", defaults.Width,
		"Recorded viewport width")
	cmd.Flags().IntVar(&o.height, "height", defaults.Height,
		"Recorded viewport height")

	// Live ingestion
	cmd.Flags().BoolVarP(&o.follow, "follow", "f", false,
		"Keep reading events appended to the recording")
	cmd.Flags().StringVar(&o.liveURL, "live", "",
		"Websocket URL pushing live events (ws:// or wss://)")

	// Rendering
	cmd.Flags().Float64Var(&o.fps, "fps", 60,
		"Frame rate of the playback clock (1-1000)")
	cmd.Flags().BoolVar(&o.headless, "headless", false,
		"Print events as plain lines instead of the interactive screen")
	cmd.Flags().DurationVar(&o.seekStep, "seek-step", 5*time.Second,
		"Distance of one seek key press")
}

// playerConfig starts from the config file, if any, and applies the flags
// that were set explicitly.
func (o *playOptions) playerConfig(cmd *cobra.Command) (player.Config, error) {
	cfg := player.DefaultConfig()
	if o.configFile != "" {
		loaded, err := player.LoadConfig(expandPath(o.configFile))
		if err != nil {
			return player.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("speed") {
		cfg.Speed = o.speed
	}
	if flags.Changed("skip-inactive") {
		cfg.SkipInactive = o.skipInactive
	}
	if flags.Changed("threshold") {
		cfg.InactiveThreshold = o.threshold
	}
	if flags.Changed("autoplay") {
		cfg.AutoPlay = o.autoPlay
	}
	if flags.Changed("width") {
		cfg.Width = o.width
	}
	if flags.Changed("height") {
		cfg.Height = o.height
	}
	if o.noController {
		cfg.ShowController = false
	}
	if cfg.Tags == nil {
		cfg.Tags = map[string]string{}
	}
	for label, color := range o.tags {
		cfg.Tags[label] = color
	}
	return cfg, nil
}

func (o *playOptions) playConfig(cmd *cobra.Command, args []string) (*playback.PlayConfig, error) {
	playerCfg, err := o.playerConfig(cmd)
	if err != nil {
		return nil, err
	}

	recordings := make([]string, len(args))
	for i, arg := range args {
		recordings[i] = expandPath(arg)
	}

	config := &playback.PlayConfig{
		Recordings:  recordings,
		Player:      playerCfg,
		Follow:      o.follow,
		LiveURL:     o.liveURL,
		FrameRate:   o.fps,
		Headless:    o.headless,
		SeekStep:    o.seekStep,
		Output:      cmd.OutOrStdout(),
		Concurrency: runtime.NumCPU(),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	config, err := playOpts.playConfig(cmd, args)
	if err != nil {
		return err
	}

	orchestrator, err := playback.NewOrchestrator(config)
	if err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}

	// Set up signal handling
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return orchestrator.Run(ctx)
}
