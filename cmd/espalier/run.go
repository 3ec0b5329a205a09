package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mbruna/espalier/internal/demo"
	"github.com/mbruna/espalier/internal/presentation/tui"
	"github.com/mbruna/espalier/pkg/runner"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the booking skill interactively",
	Long:  `Starts the demo booking skill in an interactive terminal loop. Utterances like "haircut", "change date to 2026-09-12" or plain "yes" are parsed into dialog turns.`,
	Run: func(cmd *cobra.Command, args []string) {
		plain, _ := cmd.Flags().GetBool("plain")
		session, _ := cmd.Flags().GetString("session")

		engine, err := newEngine(cmd, nil)
		if err != nil {
			fmt.Printf("Error initializing espalier: %v\n", err)
			os.Exit(1)
		}

		opts := []runner.Option{runner.WithSessionID(session)}
		if !plain && term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner()
			opts = append(opts, runner.WithRenderer(tui.NewRenderer()))
		}

		r := runner.NewRunner(runner.NewParser(demo.SlotNames...), opts...)
		if err := r.Run(cmd.Context(), engine); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
	runCmd.Flags().String("session", "", "Resume a specific session id")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
