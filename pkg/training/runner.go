// Package training drives the population-based-training loop: train all
// members, evaluate them, then let the selector copy the best over the
// worst. The loop is deterministic given its starting key; training and
// evaluation fan out over a bounded goroutine pool while selection stays
// sequential.
package training

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/logging"
	"github.com/BioGeek/qdax-go/pkg/metrics"
	"github.com/BioGeek/qdax-go/pkg/pbt"
	"github.com/BioGeek/qdax-go/pkg/rng"
	"github.com/BioGeek/qdax-go/pkg/store"
)

// Config contains the loop settings of a Runner.
type Config struct {
	// Name labels the run in logs and the store.
	Name string `json:"name"` // Default: "pbt-run"

	// Loop extent
	Generations        int `json:"generations"`          // Default: 10
	StepsPerGeneration int `json:"steps_per_generation"` // Default: 100
	EvalEpisodes       int `json:"eval_episodes"`        // Default: 1

	// Concurrency and sharding
	MaxConcurrency int `json:"max_concurrency"` // Default: 4
	NumShards      int `json:"num_shards"`      // Default: 1

	// Persistence cadence; 0 disables periodic checkpoints. A final
	// checkpoint is always written when a store is attached.
	CheckpointEvery int `json:"checkpoint_every"` // Default: 0

	// Timeout bounds a single generation; 0 means no limit.
	Timeout time.Duration `json:"timeout"` // Default: 0
}

// Runner executes PBT generations over a population.
type Runner struct {
	config    Config
	plan      *pbt.ShardPlan
	selector  *pbt.Selector
	trainer   core.Trainer
	evaluator core.Evaluator

	runStore  store.RunStore
	recorder  *metrics.Recorder
	perturber pbt.Perturber
	presetRun store.Run
	events    *logging.EventLog

	logger *logging.Logger
}

// Option configures optional Runner collaborators.
type Option func(*Runner)

// WithStore attaches a run store; the runner records the run, its
// generation summaries, and checkpoints there.
func WithStore(s store.RunStore) Option {
	return func(r *Runner) {
		r.runStore = s
	}
}

// WithRecorder attaches a metrics recorder that receives every
// generation summary, typically to write a CSV afterwards.
func WithRecorder(rec *metrics.Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithPerturber overrides the selector's hyperparameter perturbation
// strategy.
func WithPerturber(p pbt.Perturber) Option {
	return func(r *Runner) {
		r.perturber = p
	}
}

// WithRun presets the run record (ID, seed, launch config) instead of
// letting the runner generate one. A preset run serves a single Run
// call; creating it twice in the same store fails.
func WithRun(run store.Run) Option {
	return func(r *Runner) {
		r.presetRun = run
	}
}

// WithEventLog attaches a structured event log; the runner emits
// generation, checkpoint, error, and run-end events there. The caller
// owns the log's lifecycle.
func WithEventLog(events *logging.EventLog) Option {
	return func(r *Runner) {
		r.events = events
	}
}

// NewRunner builds a runner for the given selection configuration and
// collaborators. The selection configuration is validated here,
// including shard divisibility, so a constructed runner cannot fail on
// configuration at loop time.
func NewRunner(config Config, selection pbt.Config, trainer core.Trainer, evaluator core.Evaluator, opts ...Option) (*Runner, error) {
	if trainer == nil {
		return nil, errors.New(errors.InvalidConfig, "runner requires a trainer")
	}
	if evaluator == nil {
		return nil, errors.New(errors.InvalidConfig, "runner requires an evaluator")
	}
	if config.Generations < 0 || config.StepsPerGeneration < 0 || config.EvalEpisodes < 0 ||
		config.MaxConcurrency < 0 || config.NumShards < 0 || config.CheckpointEvery < 0 ||
		config.Timeout < 0 {
		return nil, errors.New(errors.InvalidConfig, "loop settings must not be negative")
	}
	applyDefaults(&config)

	r := &Runner{
		config:    config,
		trainer:   trainer,
		evaluator: evaluator,
		logger:    logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}

	plan, err := pbt.PlanShards(selection, config.NumShards)
	if err != nil {
		return nil, err
	}
	r.plan = plan

	var selectorOpts []pbt.Option
	if r.perturber != nil {
		selectorOpts = append(selectorOpts, pbt.WithPerturber(r.perturber))
	}
	selector, err := pbt.New(plan.Local, selectorOpts...)
	if err != nil {
		return nil, err
	}
	r.selector = selector

	return r, nil
}

func applyDefaults(config *Config) {
	if config.Name == "" {
		config.Name = "pbt-run"
	}
	if config.Generations == 0 {
		config.Generations = 10
	}
	if config.StepsPerGeneration == 0 {
		config.StepsPerGeneration = 100
	}
	if config.EvalEpisodes == 0 {
		config.EvalEpisodes = 1
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.NumShards == 0 {
		config.NumShards = 1
	}
}

// Config returns the runner's effective loop settings, defaults applied.
func (r *Runner) Config() Config {
	return r.config
}

// Plan returns the shard plan the runner selects with.
func (r *Runner) Plan() *pbt.ShardPlan {
	return r.plan
}

// Run executes the configured number of generations and returns the
// final population with its statistics. The input slice is never
// mutated; the result carries a fresh one.
func (r *Runner) Run(ctx context.Context, key rng.Key, population []core.Member) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if core.GetExecutionState(ctx) == nil {
		ctx = core.WithExecutionState(ctx)
	}

	if len(population) != r.plan.Global.PopulationSize {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "population size does not match configuration"),
			errors.Fields{"want": r.plan.Global.PopulationSize, "got": len(population)},
		)
	}

	run := r.presetRun
	if run.ID == "" {
		run = store.NewRun(r.config.Name, 0, len(population))
	}
	state := core.GetExecutionState(ctx)
	state.SetRunID(run.ID)

	ctx, span := core.StartSpan(ctx, "Runner.Run")
	defer core.EndSpan(ctx)

	r.logger.Info(ctx, "starting PBT run %q: generations=%d population=%d shards=%d",
		run.Name, r.config.Generations, len(population), r.plan.NumShards)

	if r.runStore != nil {
		if err := r.runStore.CreateRun(ctx, run); err != nil {
			span.WithError(err)
			return nil, err
		}
	}

	start := time.Now()
	current := make([]core.Member, len(population))
	copy(current, population)
	summaries := make([]metrics.Summary, 0, r.config.Generations)

	for generation := 0; generation < r.config.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			wrapped := errors.WithFields(
				errors.Wrap(err, contextCode(err), "run aborted"),
				errors.Fields{"generation": generation},
			)
			span.WithError(wrapped)
			r.markFailed(ctx, run, generation, wrapped)
			return nil, wrapped
		}
		state.SetGeneration(generation)

		nextKey, nextPopulation, summary, err := r.runGeneration(ctx, key, current, generation)
		if err != nil {
			span.WithError(err)
			r.markFailed(ctx, run, generation, err)
			return nil, err
		}
		key, current = nextKey, nextPopulation
		summaries = append(summaries, summary)
		if r.recorder != nil {
			r.recorder.Record(summary)
		}
		r.emitGeneration(ctx, summary)

		r.logger.Info(ctx, "generation %d: best=%.4f mean=%.4f std=%.4f replaced=%d",
			generation, summary.Best, summary.Mean, summary.StdDev, summary.NumReplaced)

		if r.runStore != nil {
			if err := r.runStore.AppendGeneration(ctx, run.ID, summary); err != nil {
				span.WithError(err)
				r.markFailed(ctx, run, generation, err)
				return nil, err
			}
			if r.config.CheckpointEvery > 0 && (generation+1)%r.config.CheckpointEvery == 0 {
				if err := r.checkpoint(ctx, run.ID, generation, key, current); err != nil {
					span.WithError(err)
					r.markFailed(ctx, run, generation, err)
					return nil, err
				}
				r.emitCheckpoint(ctx, generation, run.ID)
			}
		}
	}

	if r.runStore != nil {
		if err := r.checkpoint(ctx, run.ID, r.config.Generations-1, key, current); err != nil {
			span.WithError(err)
			r.markFailed(ctx, run, r.config.Generations-1, err)
			return nil, err
		}
		r.emitCheckpoint(ctx, r.config.Generations-1, run.ID)
		if err := r.runStore.FinishRun(ctx, run.ID, store.StatusCompleted); err != nil {
			span.WithError(err)
			return nil, err
		}
	}

	last := summaries[len(summaries)-1]
	result := &Result{
		RunID:       run.ID,
		Key:         key,
		Population:  current,
		Summaries:   summaries,
		Best:        current[last.BestIndex].DeepCopy(),
		BestReturn:  last.Best,
		BestIndex:   last.BestIndex,
		Generations: len(summaries),
		Duration:    time.Since(start),
	}
	r.emitRunEnd(ctx, result)
	r.logger.Info(ctx, "run %q finished: best=%.4f (member %d) in %s",
		run.Name, result.BestReturn, result.BestIndex, result.Duration.Round(time.Millisecond))
	return result, nil
}

// runGeneration executes one train/evaluate/select cycle. It returns
// the successor key, the next population, and the generation summary.
func (r *Runner) runGeneration(ctx context.Context, key rng.Key, population []core.Member, generation int) (rng.Key, []core.Member, metrics.Summary, error) {
	ctx, genSpan := core.StartSpan(ctx, fmt.Sprintf("Runner.Generation.%d", generation))
	defer core.EndSpan(ctx)

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	key, trainKey := key.Pair()
	trained, err := r.trainPhase(ctx, trainKey, population, generation)
	if err != nil {
		genSpan.WithError(err)
		return key, nil, metrics.Summary{}, err
	}

	key, evalKey := key.Pair()
	returns, err := r.evalPhase(ctx, evalKey, trained, generation)
	if err != nil {
		genSpan.WithError(err)
		return key, nil, metrics.Summary{}, err
	}

	key, selectKey := key.Pair()
	selected, numReplaced, err := r.selectPhase(ctx, selectKey, returns, trained)
	if err != nil {
		genSpan.WithError(err)
		return key, nil, metrics.Summary{}, err
	}

	summary, err := metrics.Summarize(generation, returns, numReplaced)
	if err != nil {
		genSpan.WithError(err)
		return key, nil, metrics.Summary{}, err
	}
	genSpan.WithAnnotation("best", summary.Best)
	genSpan.WithAnnotation("replaced", numReplaced)

	return key, selected, summary, nil
}

// trainPhase advances every member in parallel. Each member draws from
// its own key lineage, so results do not depend on scheduling order.
func (r *Runner) trainPhase(ctx context.Context, key rng.Key, population []core.Member, generation int) ([]core.Member, error) {
	trained := make([]core.Member, len(population))
	trainErrs := make([]error, len(population))

	p := pool.New().WithMaxGoroutines(r.config.MaxConcurrency)
	for i := range population {
		i := i
		p.Go(func() {
			member, _, err := r.trainer.Train(ctx, key.Fold(uint64(i)), population[i], r.config.StepsPerGeneration)
			if err != nil {
				trainErrs[i] = err
				return
			}
			trained[i] = member
		})
	}
	p.Wait()

	for i, err := range trainErrs {
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.TrainingFailed, "training failed"),
				errors.Fields{"generation": generation, "member": i},
			)
		}
	}
	return trained, nil
}

// evalPhase produces the returns vector, averaging over the configured
// number of evaluation episodes per member.
func (r *Runner) evalPhase(ctx context.Context, key rng.Key, population []core.Member, generation int) ([]float64, error) {
	returns := make([]float64, len(population))
	evalErrs := make([]error, len(population))

	p := pool.New().WithMaxGoroutines(r.config.MaxConcurrency)
	for i := range population {
		i := i
		p.Go(func() {
			episodeKeys := key.Fold(uint64(i)).Split(r.config.EvalEpisodes)
			var total float64
			for _, episodeKey := range episodeKeys {
				ret, err := r.evaluator.Evaluate(ctx, episodeKey, population[i])
				if err != nil {
					evalErrs[i] = err
					return
				}
				total += ret
			}
			returns[i] = total / float64(len(episodeKeys))
		})
	}
	p.Wait()

	for i, err := range evalErrs {
		if err != nil {
			return nil, errors.WithFields(
				errors.Wrap(err, errors.EvaluationFailed, "evaluation failed"),
				errors.Fields{"generation": generation, "member": i},
			)
		}
	}
	return returns, nil
}

// selectPhase runs selection independently per shard and counts how
// many slots the selector replaced. Replaced slots hold fresh copies
// while carried-over slots keep their member, so identity comparison
// gives the exact count.
func (r *Runner) selectPhase(ctx context.Context, key rng.Key, returns []float64, population []core.Member) ([]core.Member, int, error) {
	next := make([]core.Member, len(population))
	copy(next, population)

	for shard := 0; shard < r.plan.NumShards; shard++ {
		shardKey := r.plan.ShardKey(key, shard)
		_, local, err := r.selector.SelectAndReplace(ctx, shardKey,
			r.plan.ShardReturns(returns, shard),
			r.plan.ShardMembers(population, shard))
		if err != nil {
			return nil, 0, errors.WithFields(
				errors.Wrap(err, errors.SelectionFailed, "selection failed"),
				errors.Fields{"shard": shard},
			)
		}
		lo, hi := r.plan.ShardBounds(shard)
		copy(next[lo:hi], local)
	}

	numReplaced := 0
	for i := range next {
		if next[i] != population[i] {
			numReplaced++
		}
	}
	return next, numReplaced, nil
}

func (r *Runner) checkpoint(ctx context.Context, runID string, generation int, key rng.Key, population []core.Member) error {
	return r.runStore.SaveCheckpoint(ctx, store.Checkpoint{
		RunID:      runID,
		Generation: generation,
		Key:        key,
		Population: population,
	})
}

// Event emission is best effort: a full disk behind the event log must
// not abort a run that is otherwise healthy.

func (r *Runner) emitGeneration(ctx context.Context, summary metrics.Summary) {
	if r.events == nil {
		return
	}
	err := r.events.EmitGeneration(summary.Generation, map[string]interface{}{
		"best":         summary.Best,
		"best_index":   summary.BestIndex,
		"worst":        summary.Worst,
		"mean":         summary.Mean,
		"median":       summary.Median,
		"std_dev":      summary.StdDev,
		"num_replaced": summary.NumReplaced,
	})
	if err != nil {
		r.logger.Warn(ctx, "failed to emit generation event: %v", err)
	}
}

func (r *Runner) emitCheckpoint(ctx context.Context, generation int, locator string) {
	if r.events == nil {
		return
	}
	if err := r.events.EmitCheckpoint(generation, locator); err != nil {
		r.logger.Warn(ctx, "failed to emit checkpoint event: %v", err)
	}
}

func (r *Runner) emitRunEnd(ctx context.Context, result *Result) {
	if r.events == nil {
		return
	}
	err := r.events.EmitRunEnd(result.Generations-1, map[string]interface{}{
		"best":        result.BestReturn,
		"best_index":  result.BestIndex,
		"generations": result.Generations,
	})
	if err != nil {
		r.logger.Warn(ctx, "failed to emit run end event: %v", err)
	}
}

// markFailed is best effort; a store or event log that cannot record
// the failure only gets a warning.
func (r *Runner) markFailed(ctx context.Context, run store.Run, generation int, cause error) {
	if r.events != nil {
		if err := r.events.EmitError(generation, cause.Error(), false); err != nil {
			r.logger.Warn(ctx, "failed to emit error event: %v", err)
		}
	}
	if r.runStore == nil {
		return
	}
	if err := r.runStore.FinishRun(ctx, run.ID, store.StatusFailed); err != nil {
		r.logger.Warn(ctx, "failed to mark run %s as failed: %v", run.ID, err)
	}
}

func contextCode(err error) errors.ErrorCode {
	if err == context.DeadlineExceeded {
		return errors.Timeout
	}
	return errors.Canceled
}
