package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mcpadapter "github.com/mbruna/espalier/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the engine as an MCP Server over stdio.
This allows AI agents to drive dialog sessions as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := newEngine(cmd, nil)
		if err != nil {
			log.Fatalf("Error initializing espalier: %v", err)
		}

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		srv := mcpadapter.NewServer(engine)

		slog.Info("Starting Espalier MCP Server (Stdio)...")
		if err := srv.ServeStdio(); err != nil {
			slog.Error("MCP Server execution failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
