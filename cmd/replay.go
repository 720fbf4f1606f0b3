package cmd

import (
	"github.com/huangsam/chartaxis/core"
	"github.com/huangsam/chartaxis/internal/contract"
	"github.com/spf13/cobra"
)

// replayCmd runs a replay script against a fresh data layer.
var replayCmd = &cobra.Command{
	Use:   "replay SCRIPT",
	Short: "Replay a scripted sequence of series updates",
	Long: `Run a YAML replay script against a fresh data layer and report what every step changed.

A script declares its series and a list of steps:
- set / update / remove - feed data into a series (update takes persist: true to append to the bar store)
- load - read a series from the bar store
- fit_content, range, bar_spacing, right_offset, reset, animate, stop_animation, crosshair - queue redraw work

For each data step the report lists the changed series, the first changed time point
and the base index. The accumulated invalidation is printed at the end.

Examples:
  # Replay a script on the calendar axis
  chartaxis replay examples/streaming.yaml

  # Replay on a plain numeric axis and emit JSON
  chartaxis replay examples/index.yaml --axis index --output json

  # Keep the session metrics for a textfile collector
  chartaxis replay examples/streaming.yaml --metrics-file chartaxis.prom`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReplay(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Replay failed", err)
		}
	},
}
