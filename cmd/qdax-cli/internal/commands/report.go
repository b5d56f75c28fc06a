package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BioGeek/qdax-go/cmd/qdax-cli/internal/display"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/store"
)

func NewReportCommand() *cobra.Command {
	var configPath string
	var runID string
	var csvPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report per-generation statistics for a stored run",
		Long: `Show everything the store recorded about one run: its metadata, the
per-generation return statistics, and the final checkpointed population
with its hyperparameter spread. Without --run the most recent run is
reported.`,
		Example: `  # Report the most recent run
  qdax-cli report

  # Report a specific run and export its statistics
  qdax-cli report --run 3f2a... --csv history.csv`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := reportRun(configPath, runID, csvPath); err != nil {
				fail(err)
			}
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID to report on (most recent when empty)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the per-generation statistics to a CSV file")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (discovered when empty)")

	return cmd
}

func reportRun(configPath, runID, csvPath string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	st, err := openHistoryStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	run, err := resolveRun(ctx, st, runID)
	if err != nil {
		return err
	}
	summaries, err := st.Generations(ctx, run.ID)
	if err != nil {
		return err
	}

	fmt.Print(display.FormatRunHeader(run))
	fmt.Println()

	if len(summaries) == 0 {
		fmt.Println("No generations recorded for this run.")
		return nil
	}
	fmt.Print(display.FormatGenerationTable(summaries))

	// Failed or interrupted runs may have no checkpoint; that is not an
	// error worth failing the report over.
	if checkpoint, err := st.LatestCheckpoint(ctx, run.ID); err == nil {
		fmt.Println()
		fmt.Print(display.FormatPopulationDetails(checkpoint))
	}

	if csvPath != "" {
		if err := writeCSV(csvPath, summaries); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", csvPath)
	}
	return nil
}

// resolveRun picks the run to report: the one named by ID, or the most
// recently started one when no ID is given.
func resolveRun(ctx context.Context, st store.RunStore, runID string) (store.Run, error) {
	if runID != "" {
		return st.GetRun(ctx, runID)
	}
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return store.Run{}, err
	}
	if len(runs) == 0 {
		return store.Run{}, fmt.Errorf("no stored runs yet; start one with 'qdax-cli run'")
	}
	return runs[len(runs)-1], nil
}

func writeCSV(path string, summaries []metrics.Summary) error {
	recorder := metrics.NewRecorder()
	for _, summary := range summaries {
		recorder.Record(summary)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := recorder.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
