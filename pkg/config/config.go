package config

import (
	"time"
)

// Config represents the complete configuration for a population-based
// training experiment.
type Config struct {
	// Experiment identity and run length
	Experiment ExperimentConfig `yaml:"experiment" validate:"required"`

	// Population configuration
	Population PopulationConfig `yaml:"population" validate:"required"`

	// Selection configuration
	Selection SelectionConfig `yaml:"selection" validate:"required"`

	// Hyperparameter perturbation configuration
	Perturbation PerturbationConfig `yaml:"perturbation,omitempty" validate:"omitempty"`

	// Training loop configuration
	Training TrainingConfig `yaml:"training,omitempty" validate:"omitempty"`

	// Run store configuration
	Store StoreConfig `yaml:"store,omitempty" validate:"omitempty"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`

	// Event log configuration
	Events EventsConfig `yaml:"events,omitempty" validate:"omitempty"`
}

// ExperimentConfig identifies a run and fixes its length and seed.
type ExperimentConfig struct {
	// Experiment name, used in store keys and log output
	Name string `yaml:"name" validate:"required"`

	// Root seed for the run's deterministic key tree
	Seed uint64 `yaml:"seed"`

	// Number of train/evaluate/select generations
	Generations int `yaml:"generations" validate:"min=1"`
}

// PopulationConfig describes how the initial population is built.
type PopulationConfig struct {
	// Number of members in the population
	Size int `yaml:"size" validate:"required,min=1"`

	// Dimension of each member's parameter vector
	ParamDim int `yaml:"param_dim" validate:"min=1"`

	// Initial hyperparameter values shared by all members
	Hyperparams map[string]float64 `yaml:"hyperparams,omitempty"`

	// Replay buffer capacity per member (0 disables buffers)
	BufferCapacity int `yaml:"buffer_capacity" validate:"min=0"`
}

// SelectionConfig mirrors the selector's exploit settings.
type SelectionConfig struct {
	// Number of top members to copy from
	NumBest int `yaml:"num_best" validate:"min=0"`

	// Number of bottom members to replace
	NumWorse int `yaml:"num_worse" validate:"min=0"`

	// Number of independent selection shards
	NumShards int `yaml:"num_shards" validate:"min=1"`
}

// PerturbationConfig controls the explore step applied to copied members.
type PerturbationConfig struct {
	// Enable hyperparameter perturbation after replacement
	Enabled bool `yaml:"enabled"`

	// Multiplicative factors to sample from (defaults to 0.8 and 1.2)
	Factors []float64 `yaml:"factors,omitempty"`
}

// TrainingConfig holds training loop settings.
type TrainingConfig struct {
	// Training steps each member runs per generation
	StepsPerGeneration int `yaml:"steps_per_generation" validate:"min=1"`

	// Episodes averaged per evaluation
	EvalEpisodes int `yaml:"eval_episodes" validate:"min=1"`

	// Maximum members trained concurrently
	MaxConcurrency int `yaml:"max_concurrency" validate:"min=1"`

	// Per-generation timeout (0 disables)
	Timeout time.Duration `yaml:"timeout,omitempty" validate:"omitempty,min=1s"`
}

// StoreConfig selects and configures the run store backend.
type StoreConfig struct {
	// Backend type (memory, sqlite)
	Backend string `yaml:"backend" validate:"oneof=memory sqlite"`

	// Checkpoint every N generations (0 disables checkpoints)
	CheckpointEvery int `yaml:"checkpoint_every" validate:"min=0"`

	// SQLite specific configuration
	SQLite SQLiteStoreConfig `yaml:"sqlite,omitempty"`
}

// SQLiteStoreConfig holds SQLite-specific store configuration.
type SQLiteStoreConfig struct {
	// Path to SQLite database file
	Path string `yaml:"path"`

	// Enable WAL mode for better concurrent performance
	EnableWAL bool `yaml:"enable_wal"`

	// Maximum number of connections
	MaxConnections int `yaml:"max_connections" validate:"min=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Log level (DEBUG, INFO, WARN, ERROR, FATAL)
	Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR FATAL"`

	// Output configurations
	Outputs []LogOutputConfig `yaml:"outputs"`
}

// LogOutputConfig represents a logging output destination.
type LogOutputConfig struct {
	// Type of output (console, file)
	Type string `yaml:"type" validate:"required,oneof=console file"`

	// File path (for file outputs)
	FilePath string `yaml:"file_path" validate:"omitempty,file_path"`

	// Whether to use colors (for console outputs)
	Colors bool `yaml:"colors"`
}

// EventsConfig holds event log configuration.
type EventsConfig struct {
	// Enable the structured event log
	Enabled bool `yaml:"enabled"`

	// Event log file path
	Path string `yaml:"path"`

	// Rotation settings
	Rotation EventRotationConfig `yaml:"rotation,omitempty"`
}

// EventRotationConfig holds event log rotation settings.
type EventRotationConfig struct {
	// Maximum file size in bytes before rotation
	MaxSize int64 `yaml:"max_size" validate:"min=0"`

	// Maximum number of rotated files to retain
	MaxFiles int `yaml:"max_files" validate:"min=0"`
}

// Validate validates the configuration using the singleton validator.
func (c *Config) Validate() error {
	return ValidateConfiguration(c)
}
