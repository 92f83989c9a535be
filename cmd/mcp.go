package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/puter-gallery/internal/mcp"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio exposing the list_examples and run_example tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "gallery MCP server started on stdio (categories=%d)\n", a.catalog.Len())

		srv := mcpserver.NewServer(a.catalog, a.runner, platform.NewSession(sessionToken()), logger)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
