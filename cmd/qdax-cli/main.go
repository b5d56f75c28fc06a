package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BioGeek/qdax-go/cmd/qdax-cli/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "qdax-cli",
	Short: "CLI for running and inspecting population-based training experiments",
	Long: `A command-line interface for population-based training: launch
experiments from a config file, browse stored runs, and report
per-generation statistics without writing boilerplate code.

The CLI provides:
- Config-driven experiment runs on the bundled benchmark objectives
- A starter config generator
- Run history browsing backed by the SQLite run store
- Per-generation reports with CSV export`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(
		commands.NewInitCommand(),
		commands.NewRunCommand(),
		commands.NewRunsCommand(),
		commands.NewReportCommand(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
