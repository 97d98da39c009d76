package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"compound-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayJSON      bool
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an exported run log",
	Long:  "replay re-emits run rows from a JSONL export with their original pacing, optionally accelerated.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		writer, _, _, cleanup, err := newWriters(replayPrintOnly, replayJSON, "")
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to run log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print run rows as JSON lines instead of colorized summaries")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print to STDOUT instead of writing to DB")
}
