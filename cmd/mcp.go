package cmd

import (
	"github.com/huangsam/chartaxis/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the chartaxis MCP server",
	Long: `Launch an MCP server over stdio that holds one live data layer.

AI agents can register series, feed them data, read the merged time axis
and drain pending invalidation through standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Profiling and setup messages go to stderr, stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
