package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidsight/internal"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing the analysis pipeline",
	Long: `Run a Model Context Protocol (MCP) server that exposes vidsight as tools.

The MCP server provides two tools:
- get_youtube_metadata: fetch video metadata as formatted text
- analyze_youtube_video: run the full analysis pipeline and return the report

Transport options:
- stdio (default): standard MCP transport via stdin/stdout
- http: HTTP transport on the specified port`,
	Example: `  # Run MCP server with stdio transport
  vidsight mcp

  # Run MCP server with HTTP transport on port 8080
  vidsight mcp --transport=http --port=8080`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdio transport owns stdout, so progress and verbose output are off
		config.Verbose = false
		config.Quiet = true
		instruction, err := config.DefaultInstruction()
		if err != nil {
			return err
		}
		config.Pipeline.Instruction = instruction
		return config.ValidateKeys()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		app, err := internal.NewApp(cmd.Context(), config)
		if err != nil {
			return err
		}
		mcpServer := internal.NewMCPServer(app)

		if transport == "http" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting vidsight MCP server on HTTP port %d...\n", port)
		}
		return mcpServer.Start(cmd.Context(), transport, port)
	},
}

func init() {
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol (stdio or http)")
	mcpCmd.Flags().Int("port", 8080, "Port for HTTP transport (only used with --transport=http)")
	rootCmd.AddCommand(mcpCmd)
}
