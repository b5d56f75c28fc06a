package config

// GetDefaultConfig returns the default configuration for a training run.
// The defaults describe a small single-shard experiment that runs without
// any external services.
func GetDefaultConfig() *Config {
	return &Config{
		Experiment:   getDefaultExperimentConfig(),
		Population:   getDefaultPopulationConfig(),
		Selection:    getDefaultSelectionConfig(),
		Perturbation: getDefaultPerturbationConfig(),
		Training:     getDefaultTrainingConfig(),
		Store:        getDefaultStoreConfig(),
		Logging:      getDefaultLoggingConfig(),
		Events:       getDefaultEventsConfig(),
	}
}

// getDefaultExperimentConfig returns default experiment configuration.
func getDefaultExperimentConfig() ExperimentConfig {
	return ExperimentConfig{
		Name:        "pbt-experiment",
		Seed:        0,
		Generations: 10,
	}
}

// getDefaultPopulationConfig returns default population configuration.
func getDefaultPopulationConfig() PopulationConfig {
	return PopulationConfig{
		Size:     8,
		ParamDim: 2,
		Hyperparams: map[string]float64{
			"learning_rate": 0.01,
		},
		BufferCapacity: 0,
	}
}

// getDefaultSelectionConfig returns default selection configuration.
func getDefaultSelectionConfig() SelectionConfig {
	return SelectionConfig{
		NumBest:   2,
		NumWorse:  2,
		NumShards: 1,
	}
}

// getDefaultPerturbationConfig returns default perturbation configuration.
func getDefaultPerturbationConfig() PerturbationConfig {
	return PerturbationConfig{
		Enabled: true,
		Factors: []float64{0.8, 1.2},
	}
}

// getDefaultTrainingConfig returns default training loop configuration.
func getDefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		StepsPerGeneration: 100,
		EvalEpisodes:       1,
		MaxConcurrency:     4,
		Timeout:            0,
	}
}

// getDefaultStoreConfig returns default store configuration.
func getDefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend:         "memory",
		CheckpointEvery: 0,
		SQLite: SQLiteStoreConfig{
			Path:           "",
			EnableWAL:      true,
			MaxConnections: 1,
		},
	}
}

// getDefaultLoggingConfig returns default logging configuration.
func getDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "INFO",
		Outputs: []LogOutputConfig{
			{
				Type:   "console",
				Colors: true,
			},
		},
	}
}

// getDefaultEventsConfig returns default event log configuration.
func getDefaultEventsConfig() EventsConfig {
	return EventsConfig{
		Enabled: false,
		Path:    "",
		Rotation: EventRotationConfig{
			MaxSize:  10 * 1024 * 1024,
			MaxFiles: 5,
		},
	}
}

// DefaultConfigYAML returns the default configuration rendered as an example
// YAML document, suitable for writing a starter config file.
func DefaultConfigYAML() string {
	return `# Population-based training configuration.
experiment:
  name: pbt-experiment
  seed: 0
  generations: 10

population:
  size: 8
  param_dim: 2
  hyperparams:
    learning_rate: 0.01
  buffer_capacity: 0

selection:
  num_best: 2
  num_worse: 2
  num_shards: 1

perturbation:
  enabled: true
  factors: [0.8, 1.2]

training:
  steps_per_generation: 100
  eval_episodes: 1
  max_concurrency: 4

store:
  backend: memory
  checkpoint_every: 0

logging:
  level: INFO
  outputs:
    - type: console
      colors: true

events:
  enabled: false
`
}
