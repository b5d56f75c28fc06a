package pbt

import (
	"github.com/BioGeek/qdax-go/pkg/core"
	"github.com/BioGeek/qdax-go/pkg/errors"
	"github.com/BioGeek/qdax-go/pkg/rng"
)

// ShardPlan divides a global selection configuration evenly across a
// number of shards. Selection runs independently per shard on the
// members local to it; a member's global index is
// shard*MembersPerShard + localIndex. Cross-shard replacement is not
// part of the plan: a gather step before selection is the caller's
// business.
type ShardPlan struct {
	Global    Config `json:"global"`
	NumShards int    `json:"num_shards"`

	// Local is the per-shard configuration every shard's selector runs
	// with.
	Local Config `json:"local"`
}

// PlanShards validates the global configuration and splits it across
// numShards. Population size and both replacement counts must divide
// evenly; a remainder is rejected as InvalidConfig rather than silently
// truncated.
func PlanShards(global Config, numShards int) (*ShardPlan, error) {
	if err := validateConfig(global); err != nil {
		return nil, err
	}
	if numShards <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "shard count must be positive"),
			errors.Fields{"num_shards": numShards},
		)
	}
	if global.PopulationSize%numShards != 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "population size must divide evenly across shards"),
			errors.Fields{
				"population_size": global.PopulationSize,
				"num_shards":      numShards,
			},
		)
	}
	if global.NumBestToReplaceFrom%numShards != 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "num_best_to_replace_from must divide evenly across shards"),
			errors.Fields{
				"num_best_to_replace_from": global.NumBestToReplaceFrom,
				"num_shards":               numShards,
			},
		)
	}
	if global.NumWorseToReplace%numShards != 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "num_worse_to_replace must divide evenly across shards"),
			errors.Fields{
				"num_worse_to_replace": global.NumWorseToReplace,
				"num_shards":           numShards,
			},
		)
	}

	local := Config{
		PopulationSize:       global.PopulationSize / numShards,
		NumBestToReplaceFrom: global.NumBestToReplaceFrom / numShards,
		NumWorseToReplace:    global.NumWorseToReplace / numShards,
		PerturbHyperparams:   global.PerturbHyperparams,
	}

	return &ShardPlan{
		Global:    global,
		NumShards: numShards,
		Local:     local,
	}, nil
}

// MembersPerShard returns the local population size of every shard.
func (p *ShardPlan) MembersPerShard() int {
	return p.Local.PopulationSize
}

// ShardBounds returns the half-open global index range [lo, hi) of a
// shard's members.
func (p *ShardPlan) ShardBounds(shard int) (lo, hi int) {
	lo = shard * p.Local.PopulationSize
	return lo, lo + p.Local.PopulationSize
}

// GlobalIndex maps a shard-local member index to its global index.
func (p *ShardPlan) GlobalIndex(shard, local int) int {
	return shard*p.Local.PopulationSize + local
}

// ShardKey derives the shard's key lineage from the run key. Distinct
// shards get uncorrelated streams; the same run key and shard always
// produce the same shard key.
func (p *ShardPlan) ShardKey(key rng.Key, shard int) rng.Key {
	return key.Fold(uint64(shard))
}

// ShardMembers returns the sub-slice of population belonging to a
// shard. The slice shares backing storage with the input; treat it as
// read-only and rebind to the selector's returned population.
func (p *ShardPlan) ShardMembers(population []core.Member, shard int) []core.Member {
	lo, hi := p.ShardBounds(shard)
	return population[lo:hi]
}

// ShardReturns returns the sub-slice of returns belonging to a shard.
func (p *ShardPlan) ShardReturns(returns []float64, shard int) []float64 {
	lo, hi := p.ShardBounds(shard)
	return returns[lo:hi]
}
