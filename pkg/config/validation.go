package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	// Generate custom message based on tag
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s must be at least", e.Field)
	case "max":
		return fmt.Sprintf("%s must be at most", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validator provides configuration validation.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	validate := validator.New()

	// Register custom validation functions
	if err := registerAllValidators(validate); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &Validator{validate: validate}, nil
}

// ValidateConfig validates a configuration struct.
func (v *Validator) ValidateConfig(config *Config) error {
	// Check for nil config first
	if config == nil {
		return ValidationErrors{
			ValidationError{
				Field:   "config",
				Tag:     "required",
				Value:   nil,
				Message: "config is nil",
			},
		}
	}

	err := v.validate.Struct(config)
	if err == nil {
		// Perform additional custom validations if struct validation passes
		if customErrors := v.validateCustomRules(config); len(customErrors) > 0 {
			return customErrors
		}
		return nil
	}

	// Convert validator errors to our custom error format
	var validationErrors ValidationErrors

	if errs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range errs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Value:   e.Value(),
				Message: getValidationMessage(e),
			})
		}
	} else {
		validationErrors = append(validationErrors, ValidationError{
			Message: err.Error(),
		})
	}

	// Perform additional custom validations
	if customErrors := v.validateCustomRules(config); len(customErrors) > 0 {
		validationErrors = append(validationErrors, customErrors...)
	}

	return validationErrors
}

// validateCustomRules performs cross-field validation the struct tags cannot
// express.
func (v *Validator) validateCustomRules(config *Config) ValidationErrors {
	var errors ValidationErrors

	if errs := v.validateSelectionRules(config); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	if errs := v.validatePerturbationRules(&config.Perturbation); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	if errs := v.validateStoreRules(&config.Store); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	if errs := v.validateLoggingRules(&config.Logging); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	if errs := v.validateEventsRules(&config.Events); len(errs) > 0 {
		errors = append(errors, errs...)
	}

	return errors
}

// validateSelectionRules checks the selection counts against the population
// and shard layout.
func (v *Validator) validateSelectionRules(config *Config) ValidationErrors {
	var errors ValidationErrors

	sel := config.Selection
	popSize := config.Population.Size

	if popSize > 0 && sel.NumBest+sel.NumWorse > popSize {
		errors = append(errors, ValidationError{
			Field: "Selection.NumBest",
			Message: fmt.Sprintf("num_best (%d) plus num_worse (%d) must not exceed population size (%d)",
				sel.NumBest, sel.NumWorse, popSize),
		})
	}

	if sel.NumWorse > 0 && sel.NumBest == 0 {
		errors = append(errors, ValidationError{
			Field:   "Selection.NumBest",
			Message: "num_best must be positive when num_worse is positive",
		})
	}

	if sel.NumShards > 1 {
		if popSize > 0 && popSize%sel.NumShards != 0 {
			errors = append(errors, ValidationError{
				Field:   "Selection.NumShards",
				Message: fmt.Sprintf("population size (%d) must divide evenly into %d shards", popSize, sel.NumShards),
			})
		}
		if sel.NumBest%sel.NumShards != 0 {
			errors = append(errors, ValidationError{
				Field:   "Selection.NumShards",
				Message: fmt.Sprintf("num_best (%d) must divide evenly into %d shards", sel.NumBest, sel.NumShards),
			})
		}
		if sel.NumWorse%sel.NumShards != 0 {
			errors = append(errors, ValidationError{
				Field:   "Selection.NumShards",
				Message: fmt.Sprintf("num_worse (%d) must divide evenly into %d shards", sel.NumWorse, sel.NumShards),
			})
		}
	}

	return errors
}

// validatePerturbationRules checks perturbation factors.
func (v *Validator) validatePerturbationRules(config *PerturbationConfig) ValidationErrors {
	var errors ValidationErrors

	for i, factor := range config.Factors {
		if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("Perturbation.Factors[%d]", i),
				Value:   factor,
				Message: fmt.Sprintf("perturbation factors must be finite and positive, got %v", factor),
			})
		}
	}

	return errors
}

// validateStoreRules checks backend-specific store requirements.
func (v *Validator) validateStoreRules(config *StoreConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Backend == "sqlite" && config.SQLite.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "Store.SQLite.Path",
			Message: "path is required for the sqlite store backend",
		})
	}

	return errors
}

// validateLoggingRules validates logging output configuration.
func (v *Validator) validateLoggingRules(config *LoggingConfig) ValidationErrors {
	var errors ValidationErrors

	for i, output := range config.Outputs {
		if output.Type == "file" && output.FilePath == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("Logging.Outputs[%d].FilePath", i),
				Message: "file path is required for file output",
			})
		}
	}

	return errors
}

// validateEventsRules validates event log configuration.
func (v *Validator) validateEventsRules(config *EventsConfig) ValidationErrors {
	var errors ValidationErrors

	if config.Enabled && config.Path == "" {
		errors = append(errors, ValidationError{
			Field:   "Events.Path",
			Message: "path is required when the event log is enabled",
		})
	}

	return errors
}

// registerAllValidators registers all custom validators.
func registerAllValidators(validate *validator.Validate) error {
	validators := map[string]validator.Func{
		"file_path": validateFilePath,
	}

	for name, fn := range validators {
		if err := validate.RegisterValidation(name, fn); err != nil {
			return fmt.Errorf("failed to register validator '%s': %w", name, err)
		}
	}

	return nil
}

// validateFilePath validates file paths.
func validateFilePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return true // Allow empty paths
	}
	return filepath.IsAbs(path)
}

// getValidationMessage returns a human-readable validation message.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "file_path":
		return fmt.Sprintf("%s must be an absolute file path", e.Field())
	default:
		return fmt.Sprintf("%s failed validation", e.Field())
	}
}

// Global validator instance.
var (
	globalValidator *Validator
	validatorOnce   sync.Once
)

// GetValidator returns the global validator instance.
func GetValidator() *Validator {
	validatorOnce.Do(func() {
		var err error
		globalValidator, err = NewValidator()
		if err != nil {
			panic(fmt.Sprintf("failed to create global validator: %v", err))
		}
	})
	return globalValidator
}

// ValidateConfiguration validates a configuration using the global validator.
func ValidateConfiguration(config *Config) error {
	return GetValidator().ValidateConfig(config)
}
