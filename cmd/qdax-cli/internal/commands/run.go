package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/BioGeek/qdax-go/cmd/qdax-cli/internal/display"
	"github.com/BioGeek/qdax-go/pkg/benchmarks"
	"github.com/BioGeek/qdax-go/pkg/config"
	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/logging"
	"github.com/BioGeek/qdax-go/pkg/pbt"
	"github.com/BioGeek/qdax-go/pkg/rng"
	"github.com/BioGeek/qdax-go/pkg/store"
	"github.com/BioGeek/qdax-go/pkg/training"
)

func NewRunCommand() *cobra.Command {
	var configPath string
	var objectiveName string
	var noise float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a population-based training experiment from a config file",
		Long: `Run a full population-based training experiment on one of the bundled
benchmark objectives: every generation trains all members, scores them,
and copies the best members over the worst before perturbing the
copies' hyperparameters.

All loop settings come from the config file (see 'qdax-cli init' for a
starter). The objective is chosen per invocation so one config template
serves a whole benchmark sweep.`,
		Example: `  # Run with a discovered config (qdax.yaml in the usual places)
  qdax-cli run

  # Run a specific config against the eggholder objective
  qdax-cli run --config experiment.yaml --objective eggholder

  # Add observation noise so repeated evaluations disagree
  qdax-cli run --objective sphere --noise 0.5`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runExperiment(configPath, objectiveName, noise); err != nil {
				fail(err)
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (discovered when empty)")
	cmd.Flags().StringVar(&objectiveName, "objective", "rastrigin", "Benchmark objective (sphere, rastrigin, eggholder)")
	cmd.Flags().Float64Var(&noise, "noise", 0, "Gaussian observation noise added to every evaluation")

	return cmd
}

func runExperiment(configPath, objectiveName string, noise float64) error {
	cfg, resolvedPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLogger, err := buildLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLogger()
	logging.SetLogger(logger)

	objective, err := benchmarks.ByName(objectiveName)
	if err != nil {
		return err
	}
	dims := cfg.Population.ParamDim
	if objective.Dims() > 0 {
		dims = objective.Dims()
	}

	printRunBanner(cfg, resolvedPath, objective.Name(), dims)

	st, err := store.Open(storeOptions(cfg.Store))
	if err != nil {
		return err
	}
	defer st.Close()

	run := store.NewRun(cfg.Experiment.Name, cfg.Experiment.Seed, cfg.Population.Size)
	if resolvedPath != "" {
		// Keep the launch config with the run so reports can show it.
		if raw, err := os.ReadFile(resolvedPath); err == nil {
			run.Config = string(raw)
		}
	}

	opts := []training.Option{
		training.WithStore(st),
		training.WithRun(run),
	}
	if cfg.Perturbation.Enabled && len(cfg.Perturbation.Factors) > 0 {
		opts = append(opts, training.WithPerturber(pbt.NewFactorPerturber(cfg.Perturbation.Factors...)))
	}
	if cfg.Events.Enabled {
		if cfg.Events.Path == "" {
			return fmt.Errorf("events.path is required when the event log is enabled")
		}
		var eventOpts []logging.EventOutputOption
		if cfg.Events.Rotation.MaxSize > 0 {
			eventOpts = append(eventOpts, logging.WithEventRotation(cfg.Events.Rotation.MaxSize, cfg.Events.Rotation.MaxFiles))
		}
		events, err := logging.NewEventLog(cfg.Events.Path, run.ID, eventOpts...)
		if err != nil {
			return err
		}
		defer events.Close()
		opts = append(opts, training.WithEventLog(events))
	}

	selection := pbt.Config{
		PopulationSize:       cfg.Population.Size,
		NumBestToReplaceFrom: cfg.Selection.NumBest,
		NumWorseToReplace:    cfg.Selection.NumWorse,
		PerturbHyperparams:   cfg.Perturbation.Enabled,
	}
	loop := training.Config{
		Name:               cfg.Experiment.Name,
		Generations:        cfg.Experiment.Generations,
		StepsPerGeneration: cfg.Training.StepsPerGeneration,
		EvalEpisodes:       cfg.Training.EvalEpisodes,
		MaxConcurrency:     cfg.Training.MaxConcurrency,
		NumShards:          cfg.Selection.NumShards,
		CheckpointEvery:    cfg.Store.CheckpointEvery,
		Timeout:            cfg.Training.Timeout,
	}

	trainer, err := benchmarks.NewSearchTrainer(objective, benchmarks.TrainerConfig{})
	if err != nil {
		return err
	}
	evaluator, err := benchmarks.NewEvaluator(objective, noise)
	if err != nil {
		return err
	}
	runner, err := training.NewRunner(loop, selection, trainer, evaluator, opts...)
	if err != nil {
		return err
	}

	initKey, runKey := rng.NewKey(cfg.Experiment.Seed).Pair()
	population, err := benchmarks.InitialPopulation(initKey, objective,
		cfg.Population.Size, dims, core.Hyperparams(cfg.Population.Hyperparams), cfg.Population.BufferCapacity)
	if err != nil {
		return err
	}

	ctx := core.WithExecutionState(context.Background())
	result, err := runner.Run(ctx, runKey, population)
	if err != nil {
		return err
	}

	printRunResult(result, cfg.Store.Backend == store.BackendSQLite)
	return nil
}

// buildLogger assembles the library logger from the config's output
// list. The returned closer flushes every output and closes the
// file-backed ones; console outputs stay open since they wrap stderr.
func buildLogger(cfg config.LoggingConfig) (*logging.Logger, func(), error) {
	var outputs []logging.Output
	var files []*logging.FileOutput

	for _, out := range cfg.Outputs {
		switch out.Type {
		case "file":
			f, err := logging.NewFileOutput(out.FilePath)
			if err != nil {
				return nil, nil, err
			}
			outputs = append(outputs, f)
			files = append(files, f)
		default:
			outputs = append(outputs, logging.NewConsoleOutput(true, logging.WithColor(out.Colors)))
		}
	}
	if len(outputs) == 0 {
		outputs = append(outputs, logging.NewConsoleOutput(true, logging.WithColor(true)))
	}

	logger := logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Level),
		Outputs:  outputs,
	})
	closer := func() {
		for _, out := range outputs {
			_ = out.Sync()
		}
		for _, f := range files {
			_ = f.Close()
		}
	}
	return logger, closer, nil
}

func printRunBanner(cfg *config.Config, configPath, objective string, dims int) {
	bold := color.New(color.Bold, color.FgBlue)
	cyan := color.New(color.FgCyan)

	fmt.Println(bold.Sprintf("🧬 %s", cfg.Experiment.Name))
	fmt.Println(strings.Repeat("=", 50))
	if configPath != "" {
		fmt.Printf("%s %s\n", cyan.Sprint("Config:"), configPath)
	} else {
		fmt.Printf("%s built-in defaults\n", cyan.Sprint("Config:"))
	}
	fmt.Printf("%s %s (%d dims)\n", cyan.Sprint("Objective:"), objective, dims)
	fmt.Printf("%s %d members, %d generations x %d steps\n", cyan.Sprint("Plan:"),
		cfg.Population.Size, cfg.Experiment.Generations, cfg.Training.StepsPerGeneration)
	fmt.Printf("%s %s\n", cyan.Sprint("Store:"), cfg.Store.Backend)
	fmt.Println()
}

func printRunResult(result *training.Result, persisted bool) {
	fmt.Println()
	fmt.Print(display.FormatGenerationTable(result.Summaries))
	fmt.Println()

	green := color.New(color.Bold, color.FgGreen)
	cyan := color.New(color.FgCyan)
	fmt.Printf("%s best=%.4f (member %d) after %d generations in %s\n",
		green.Sprint("🏆 Done:"), result.BestReturn, result.BestIndex,
		result.Generations, result.Duration.Round(time.Millisecond))

	if hypers := result.BestHyperparams(); len(hypers) > 0 {
		names := make([]string, 0, len(hypers))
		for name := range hypers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s %s=%.6g\n", cyan.Sprint("Winner:"), name, hypers[name])
		}
	}

	if persisted {
		fmt.Printf("\n%s qdax-cli report --run %s\n", cyan.Sprint("Inspect:"), result.RunID)
	}
}
