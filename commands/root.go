package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/penwyp/go-replay-player/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug     bool
	logLevel  string
	logFile   string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "go-replay-player",
		Short: "Terminal player for recorded browser sessions",
		Long: `go-replay-player replays recorded browser sessions in the terminal.

A recording is a JSON array or a JSONL file of events, each carrying a type,
a millisecond timestamp and opaque data. Several files are played as one
recording. Long idle stretches are skipped at high speed by default.

Examples:
  go-replay-player play session.jsonl                  # Play a recording
  go-replay-player play part1.json part2.json --speed 2 # Play chunks at 2x
  go-replay-player play live.jsonl --follow            # Follow a growing recording
  go-replay-player play --live ws://localhost:8080/rec # Play events pushed over a websocket
  go-replay-player inspect session.jsonl --output json # Show activity segments`,
		SilenceUsage:      true,
		PersistentPreRunE: initLogging,
	}
)

const defaultLogFile = "~/.go-replay-player/logs/app.log"

func init() {
	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path (empty logs to stderr)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"Log format (text, json)")
}

func initLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if debug {
		level = "debug"
	}

	opts := util.LoggerOptions{
		Level:  level,
		Format: util.LogFormat(logFormat),
	}
	if logFile == "" {
		opts.Console = os.Stderr
	} else {
		opts.File = expandPath(logFile)
		if err := ensureDir(filepath.Dir(opts.File)); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	if err := util.InitLogger(opts); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
