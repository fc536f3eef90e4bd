package commands

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/penwyp/go-replay-player/internal/core/inactivity"
	"github.com/penwyp/go-replay-player/internal/core/store"
	"github.com/penwyp/go-replay-player/internal/data/parser"
	"github.com/penwyp/go-replay-player/internal/data/scanner"
	"github.com/penwyp/go-replay-player/internal/presentation/formatter"
	"github.com/spf13/cobra"
)

var (
	inspectOutput    string
	inspectThreshold time.Duration
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <recording...>",
	Short: "Summarize a recording's activity",
	Long: `Loads a recording and prints its bounds, event counts per type and the
active and inactive segments found with the given idle threshold.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "table",
		"Output format (table, json)")
	inspectCmd.Flags().DurationVar(&inspectThreshold, "threshold", inactivity.DefaultThreshold,
		"Idle gap that counts as inactivity")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, ok := formatter.New(inspectOutput)
	if !ok {
		return fmt.Errorf("unsupported output format: %s", inspectOutput)
	}
	if inspectThreshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %v", inspectThreshold)
	}

	files := make([]string, len(args))
	for i, arg := range args {
		files[i] = expandPath(arg)
	}

	files, err := scanner.ResolveRecordings(files)
	if err != nil {
		return err
	}
	events, err := parser.NewParser(runtime.NumCPU()).LoadAll(files)
	if err != nil {
		return err
	}

	st := store.NewEventStore(events...)
	segments := slices.Collect(inactivity.NewDetector(inspectThreshold).Scan(st))
	report := formatter.NewReport(strings.Join(args, ", "), st.Slice(0, st.Count()), segments, inspectThreshold)

	return f.Format(cmd.OutOrStdout(), report)
}
