package main

import (
	"github.com/spf13/cobra"

	"aether-sim/internal/sim"
)

var (
	replayInput    string
	replaySpeed    float64
	replayOutput   string
	replayGreptime bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a decision log file",
	Long:  "replay feeds decision rows from a JSONL log back into GreptimeDB or STDOUT, paced by their timestamps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		writer, cleanup, err := newWriters(cfg, replayOutput, "", replayGreptime)
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to decision log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().StringVar(&replayOutput, "output", "json", "Console output: auto, json, color or tui")
	replayCmd.Flags().BoolVar(&replayGreptime, "greptime", false, "Also write rows to GreptimeDB at GREPTIMEDB_ENDPOINT")
	replayCmd.MarkFlagRequired("input")
}
