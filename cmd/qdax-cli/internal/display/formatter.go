package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/store"
)

var (
	title = color.New(color.Bold, color.FgBlue)
	label = color.New(color.FgCyan)
	tip   = color.New(color.FgMagenta)

	statusColors = map[store.RunStatus]*color.Color{
		store.StatusCompleted: color.New(color.FgGreen),
		store.StatusFailed:    color.New(color.FgRed),
		store.StatusRunning:   color.New(color.FgYellow),
	}

	// Env-step totals reach millions quickly; print them with separators.
	number = message.NewPrinter(language.English)
)

// FormatRunsTable renders stored runs as a table ordered by start time.
func FormatRunsTable(runs []store.Run) string {
	var output strings.Builder

	output.WriteString(title.Sprintf("Stored runs (%d)\n", len(runs)))
	output.WriteString(strings.Repeat("=", 100) + "\n")
	output.WriteString(fmt.Sprintf("%-36s  %-20s  %-10s  %10s  %5s  %-16s\n",
		"ID", "NAME", "STATUS", "SEED", "POP", "STARTED"))

	for _, run := range runs {
		output.WriteString(fmt.Sprintf("%-36s  %-20s  %s  %10d  %5d  %-16s\n",
			run.ID,
			truncate(run.Name, 20),
			statusCell(run.Status, 10),
			run.Seed,
			run.PopulationSize,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
		))
	}

	output.WriteString(fmt.Sprintf("\n%s Use 'qdax-cli report --run <id>' for per-generation details\n",
		tip.Sprint("Tip:")))

	return output.String()
}

// FormatRunHeader renders a run's identity block.
func FormatRunHeader(run store.Run) string {
	var output strings.Builder

	output.WriteString(title.Sprintf("%s\n", run.Name))
	output.WriteString(strings.Repeat("=", len(run.Name)+10) + "\n")
	output.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Run ID:"), run.ID))
	output.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Status:"), statusCell(run.Status, 0)))
	output.WriteString(fmt.Sprintf("%s %d\n", label.Sprint("Seed:"), run.Seed))
	output.WriteString(fmt.Sprintf("%s %d members\n", label.Sprint("Population:"), run.PopulationSize))
	output.WriteString(fmt.Sprintf("%s %s\n", label.Sprint("Started:"), run.StartedAt.Local().Format(time.RFC1123)))
	if !run.FinishedAt.IsZero() {
		output.WriteString(fmt.Sprintf("%s %s (took %s)\n",
			label.Sprint("Finished:"),
			run.FinishedAt.Local().Format(time.RFC1123),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second)))
	}

	return output.String()
}

// FormatGenerationTable renders per-generation return statistics.
func FormatGenerationTable(summaries []metrics.Summary) string {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("%4s  %12s  %5s  %12s  %12s  %12s  %8s\n",
		"GEN", "BEST", "IDX", "MEAN", "MEDIAN", "STDDEV", "REPLACED"))
	for _, s := range summaries {
		output.WriteString(fmt.Sprintf("%4d  %12.4f  %5d  %12.4f  %12.4f  %12.4f  %8d\n",
			s.Generation, s.Best, s.BestIndex, s.Mean, s.Median, s.StdDev, s.NumReplaced))
	}

	return output.String()
}

// FormatPopulationDetails renders a checkpointed population: how much
// experience it accumulated and how selection spread its
// hyperparameters.
func FormatPopulationDetails(checkpoint store.Checkpoint) string {
	var output strings.Builder

	var envSteps int64
	for _, member := range checkpoint.Population {
		if state, ok := member.(*core.AgentState); ok {
			envSteps += state.EnvSteps
		}
	}

	output.WriteString(title.Sprint("Final population\n"))
	output.WriteString(strings.Repeat("-", 30) + "\n")
	output.WriteString(fmt.Sprintf("%s generation %d, %d members, %s env steps\n",
		label.Sprint("Checkpoint:"),
		checkpoint.Generation,
		len(checkpoint.Population),
		number.Sprintf("%d", envSteps)))

	spreads := metrics.HyperparamSpread(checkpoint.Population)
	if len(spreads) == 0 {
		return output.String()
	}

	output.WriteString(label.Sprint("Hyperparameters:") + "\n")
	names := make([]string, 0, len(spreads))
	for name := range spreads {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := spreads[name]
		output.WriteString(fmt.Sprintf("  %-20s min=%-10.4g max=%-10.4g mean=%-10.4g std=%.4g\n",
			name, s.Min, s.Max, s.Mean, s.StdDev))
	}

	return output.String()
}

// statusCell pads first and colors afterwards, so the escape codes do
// not throw off column alignment.
func statusCell(status store.RunStatus, width int) string {
	padded := fmt.Sprintf("%-*s", width, string(status))
	if c, ok := statusColors[status]; ok {
		return c.Sprint(padded)
	}
	return padded
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
