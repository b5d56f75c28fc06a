package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BioGeek/qdax-go/cmd/qdax-cli/internal/display"
)

func NewRunsCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored experiment runs",
		Long: `List every run recorded in the configured run store, ordered by start
time: its ID, status, seed, and population size. Pass a run's ID to
'qdax-cli report' to see its per-generation statistics.`,
		Example: `  # List runs from the discovered config's store
  qdax-cli runs

  # List runs from a specific experiment database
  qdax-cli runs --config experiment.yaml`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, _, err := loadConfig(configPath)
			if err != nil {
				fail(err)
			}
			st, err := openHistoryStore(cfg)
			if err != nil {
				fail(err)
			}
			defer st.Close()

			runs, err := st.ListRuns(context.Background())
			if err != nil {
				fail(err)
			}
			if len(runs) == 0 {
				fmt.Println("No stored runs yet. Start one with 'qdax-cli run'.")
				return
			}

			fmt.Print(display.FormatRunsTable(runs))
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (discovered when empty)")

	return cmd
}
