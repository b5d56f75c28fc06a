package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestGetDefaultConfig(t *testing.T) {
	config := GetDefaultConfig()
	require.NotNil(t, config)

	assert.Equal(t, "pbt-experiment", config.Experiment.Name)
	assert.Equal(t, uint64(0), config.Experiment.Seed)
	assert.Equal(t, 10, config.Experiment.Generations)

	assert.Equal(t, 8, config.Population.Size)
	assert.Equal(t, 2, config.Population.ParamDim)
	assert.Equal(t, 0.01, config.Population.Hyperparams["learning_rate"])

	assert.Equal(t, 2, config.Selection.NumBest)
	assert.Equal(t, 2, config.Selection.NumWorse)
	assert.Equal(t, 1, config.Selection.NumShards)

	assert.True(t, config.Perturbation.Enabled)
	assert.Equal(t, []float64{0.8, 1.2}, config.Perturbation.Factors)

	assert.Equal(t, "memory", config.Store.Backend)
	assert.Equal(t, "INFO", config.Logging.Level)
	assert.False(t, config.Events.Enabled)
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, GetDefaultConfig().Validate())
}

func TestDefaultConfigIsFreshPerCall(t *testing.T) {
	first := GetDefaultConfig()
	second := GetDefaultConfig()

	first.Population.Hyperparams["learning_rate"] = 99
	assert.Equal(t, 0.01, second.Population.Hyperparams["learning_rate"])
}

func TestDefaultConfigYAMLParsesAndValidates(t *testing.T) {
	var config Config
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigYAML()), &config))

	assert.Equal(t, "pbt-experiment", config.Experiment.Name)
	assert.Equal(t, 8, config.Population.Size)
	assert.NoError(t, config.Validate())
}
