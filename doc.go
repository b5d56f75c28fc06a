// Package qdax is a Go toolkit for population-based training (PBT):
// evolving a population of learning agents by periodically copying the
// best performers over the worst and perturbing their hyperparameters.
//
// QDAX-Go provides the selection protocol together with the machinery a
// PBT experiment needs around it. It focuses on making it easy to:
//   - Run deterministic, seedable experiments end to end
//   - Exploit good members and explore hyperparameters every generation
//   - Shard selection across independent slices of one population
//   - Persist runs, per-generation statistics, and resumable checkpoints
//   - Plug in real trainers and evaluators behind two small interfaces
//
// Key Components:
//
//   - Core: the population data model. Member is the interface selection
//     operates on; AgentState is the concrete member carrying network
//     parameters, target parameters, optimizer state, hyperparameters,
//     and a replay buffer. Trainer and Evaluator are the two collaborator
//     interfaces external learners implement.
//
//   - RNG: splittable deterministic random keys. Every operation that
//     draws randomness consumes an explicit rng.Key; splitting the same
//     key always yields the same children, which is what makes whole runs
//     reproducible bit for bit.
//
//   - PBT: the selector. SelectAndReplace ranks a returns vector,
//     replaces the worst members with deep copies of the best, and
//     optionally perturbs the copies' hyperparameters; ShardPlan splits
//     one population into independently selected shards.
//
//   - Training: the generation loop. Runner trains and evaluates the
//     population on a bounded goroutine pool, selects, records summaries,
//     and checkpoints through the store.
//
//   - Store: run persistence. Memory and SQLite backends record runs,
//     per-generation statistics, and checkpoints that include the RNG key
//     needed for bit-identical resumption.
//
//   - Benchmarks: synthetic objectives (sphere, rastrigin, eggholder)
//     with a stochastic-search trainer, so the full loop runs without any
//     external learner.
//
// Simple Example:
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/BioGeek/qdax-go/pkg/benchmarks"
//	    "github.com/BioGeek/qdax-go/pkg/core"
//	    "github.com/BioGeek/qdax-go/pkg/pbt"
//	    "github.com/BioGeek/qdax-go/pkg/rng"
//	    "github.com/BioGeek/qdax-go/pkg/training"
//	)
//
//	func main() {
//	    objective, _ := benchmarks.ByName("rastrigin")
//	    trainer, _ := benchmarks.NewSearchTrainer(objective, benchmarks.TrainerConfig{})
//	    evaluator, _ := benchmarks.NewEvaluator(objective, 0)
//
//	    runner, err := training.NewRunner(
//	        training.Config{Generations: 20, StepsPerGeneration: 200},
//	        pbt.Config{
//	            PopulationSize:       8,
//	            NumBestToReplaceFrom: 2,
//	            NumWorseToReplace:    2,
//	            PerturbHyperparams:   true,
//	        },
//	        trainer, evaluator,
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    initKey, runKey := rng.NewKey(42).Pair()
//	    population, _ := benchmarks.InitialPopulation(initKey, objective, 8, 3,
//	        core.Hyperparams{"learning_rate": 0.05}, 0)
//
//	    result, err := runner.Run(context.Background(), runKey, population)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("best return %.4f from member %d", result.BestReturn, result.BestIndex)
//	}
//
// Advanced Features:
//
//   - Determinism: the same seed, population, and configuration produce
//     the same run regardless of worker scheduling; per-member keys are
//     folded from each phase's key, not drawn in arrival order.
//
//   - Sharded selection: selection can run independently on equal slices
//     of the population, matching multi-host setups where each host
//     exploits only its own members.
//
//   - Checkpoint resumption: checkpoints store the post-generation key
//     alongside the population, so a resumed run continues the exact key
//     sequence of an uninterrupted one.
//
//   - Structured logging and events: severity-filtered logs enriched with
//     run and generation context, plus a JSONL event log tools can
//     replay.
//
//   - Configuration: YAML experiment configs with validation, defaults,
//     discovery, and environment overrides; the qdax-cli command runs
//     experiments straight from them.
//
// For more examples see the examples/ directory and cmd/qdax-cli.
//
// QDAX-Go is released under the MIT License.
package qdax
