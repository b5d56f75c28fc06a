package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source represents a configuration source.
type Source interface {
	// Load loads configuration from the source into the provided config
	Load(config *Config, paths []string) error

	// Name returns the name of the source
	Name() string

	// Priority returns the priority of the source (higher priority overrides lower)
	Priority() int
}

// FileSource loads configuration from YAML files.
type FileSource struct {
	priority int
}

// NewFileSource creates a new file source.
func NewFileSource() *FileSource {
	return &FileSource{priority: 100}
}

// NewFileSourceWithPriority creates a new file source with custom priority.
func NewFileSourceWithPriority(priority int) *FileSource {
	return &FileSource{priority: priority}
}

// Name returns the name of the file source.
func (fs *FileSource) Name() string {
	return "file"
}

// Priority returns the priority of the file source.
func (fs *FileSource) Priority() int {
	return fs.priority
}

// Load loads configuration from YAML files.
func (fs *FileSource) Load(config *Config, paths []string) error {
	for _, path := range paths {
		if !fileExists(path) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshaling directly into the target overrides only the keys
		// the file actually sets, so partial files layer over defaults
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}
	}

	return nil
}

// EnvironmentSource loads configuration from environment variables.
type EnvironmentSource struct {
	priority int
	prefix   string
}

// NewEnvironmentSource creates a new environment source.
func NewEnvironmentSource() *EnvironmentSource {
	return &EnvironmentSource{
		priority: 200, // Higher priority than file source
		prefix:   "QDAX_",
	}
}

// NewEnvironmentSourceWithPrefix creates a new environment source with custom prefix.
func NewEnvironmentSourceWithPrefix(prefix string) *EnvironmentSource {
	return &EnvironmentSource{
		priority: 200,
		prefix:   prefix,
	}
}

// Name returns the name of the environment source.
func (es *EnvironmentSource) Name() string {
	return "environment"
}

// Priority returns the priority of the environment source.
func (es *EnvironmentSource) Priority() int {
	return es.priority
}

// Load loads configuration from environment variables.
func (es *EnvironmentSource) Load(config *Config, paths []string) error {
	envVars := es.getEnvironmentVariables()

	// Sort keys so overrides apply in a consistent order
	keys := make([]string, 0, len(envVars))
	for key := range envVars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := envVars[key]
		if err := es.setConfigValue(config, key, value); err != nil {
			return fmt.Errorf("failed to set config value %s=%s: %w", key, value, err)
		}
	}

	return nil
}

// getEnvironmentVariables gets all environment variables with the configured prefix.
func (es *EnvironmentSource) getEnvironmentVariables() map[string]string {
	envVars := make(map[string]string)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key, value := parts[0], parts[1]

		// Only process environment variables with our specific prefix
		if strings.HasPrefix(key, es.prefix) {
			// Convert environment variable to config key
			configKey := strings.ToLower(strings.TrimPrefix(key, es.prefix))
			configKey = strings.ReplaceAll(configKey, "_", ".")
			envVars[configKey] = value
		}
	}

	return envVars
}

// setConfigValue sets a configuration value using dot notation.
func (es *EnvironmentSource) setConfigValue(config *Config, key, value string) error {
	switch {
	case strings.HasPrefix(key, "experiment."):
		return es.setExperimentValue(&config.Experiment, strings.TrimPrefix(key, "experiment."), value)
	case strings.HasPrefix(key, "population."):
		return es.setPopulationValue(&config.Population, strings.TrimPrefix(key, "population."), value)
	case strings.HasPrefix(key, "selection."):
		return es.setSelectionValue(&config.Selection, strings.TrimPrefix(key, "selection."), value)
	case strings.HasPrefix(key, "perturbation."):
		return es.setPerturbationValue(&config.Perturbation, strings.TrimPrefix(key, "perturbation."), value)
	case strings.HasPrefix(key, "training."):
		return es.setTrainingValue(&config.Training, strings.TrimPrefix(key, "training."), value)
	case strings.HasPrefix(key, "store."):
		return es.setStoreValue(&config.Store, strings.TrimPrefix(key, "store."), value)
	case strings.HasPrefix(key, "logging."):
		return es.setLoggingValue(&config.Logging, strings.TrimPrefix(key, "logging."), value)
	default:
		// For unhandled paths, simply ignore them rather than failing
		// This allows for more flexible environment variable usage
		return nil
	}
}

// setExperimentValue sets experiment configuration values.
func (es *EnvironmentSource) setExperimentValue(experiment *ExperimentConfig, key, value string) error {
	switch key {
	case "name":
		experiment.Name = value
	case "seed":
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		experiment.Seed = seed
	case "generations":
		generations, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid generations: %s", value)
		}
		experiment.Generations = generations
	default:
		return nil
	}
	return nil
}

// setPopulationValue sets population configuration values.
func (es *EnvironmentSource) setPopulationValue(population *PopulationConfig, key, value string) error {
	switch key {
	case "size":
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid population size: %s", value)
		}
		population.Size = size
	case "param.dim", "paramdim":
		dim, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid param dim: %s", value)
		}
		population.ParamDim = dim
	case "buffer.capacity", "buffercapacity":
		capacity, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid buffer capacity: %s", value)
		}
		population.BufferCapacity = capacity
	default:
		return nil
	}
	return nil
}

// setSelectionValue sets selection configuration values.
func (es *EnvironmentSource) setSelectionValue(selection *SelectionConfig, key, value string) error {
	switch key {
	case "num.best", "numbest":
		numBest, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num best: %s", value)
		}
		selection.NumBest = numBest
	case "num.worse", "numworse":
		numWorse, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num worse: %s", value)
		}
		selection.NumWorse = numWorse
	case "num.shards", "numshards":
		numShards, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid num shards: %s", value)
		}
		selection.NumShards = numShards
	default:
		return nil
	}
	return nil
}

// setPerturbationValue sets perturbation configuration values.
func (es *EnvironmentSource) setPerturbationValue(perturbation *PerturbationConfig, key, value string) error {
	switch key {
	case "enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid perturbation enabled flag: %s", value)
		}
		perturbation.Enabled = enabled
	case "factors":
		factors, err := parseFloatList(value)
		if err != nil {
			return fmt.Errorf("invalid perturbation factors: %s", value)
		}
		perturbation.Factors = factors
	default:
		return nil
	}
	return nil
}

// setTrainingValue sets training loop configuration values.
func (es *EnvironmentSource) setTrainingValue(training *TrainingConfig, key, value string) error {
	switch key {
	case "steps.per.generation", "stepspergeneration":
		steps, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid steps per generation: %s", value)
		}
		training.StepsPerGeneration = steps
	case "eval.episodes", "evalepisodes":
		episodes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid eval episodes: %s", value)
		}
		training.EvalEpisodes = episodes
	case "max.concurrency", "maxconcurrency":
		concurrency, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid max concurrency: %s", value)
		}
		training.MaxConcurrency = concurrency
	case "timeout":
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid training timeout: %s", value)
		}
		training.Timeout = timeout
	default:
		return nil
	}
	return nil
}

// setStoreValue sets store configuration values.
func (es *EnvironmentSource) setStoreValue(store *StoreConfig, key, value string) error {
	switch key {
	case "backend":
		store.Backend = value
	case "checkpoint.every", "checkpointevery":
		every, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid checkpoint every: %s", value)
		}
		store.CheckpointEvery = every
	case "sqlite.path":
		store.SQLite.Path = value
	case "sqlite.enable.wal", "sqlite.enablewal":
		enableWAL, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid enable wal flag: %s", value)
		}
		store.SQLite.EnableWAL = enableWAL
	default:
		return nil
	}
	return nil
}

// setLoggingValue sets logging configuration values.
func (es *EnvironmentSource) setLoggingValue(logging *LoggingConfig, key, value string) error {
	switch key {
	case "level":
		logging.Level = strings.ToUpper(value)
	default:
		return nil
	}
	return nil
}

// parseFloatList parses a comma-separated list of floats.
func parseFloatList(value string) ([]float64, error) {
	parts := strings.Split(value, ",")
	floats := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		floats = append(floats, f)
	}
	return floats, nil
}
