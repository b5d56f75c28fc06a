package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewError tests the basic creation of errors.
func TestNewError(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "InvalidInput",
			code:    InvalidInput,
			message: "returns length mismatch",
		},
		{
			name:    "InvalidConfig",
			code:    InvalidConfig,
			message: "replacement counts exceed population",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)

			customErr, ok := err.(*Error)

			assert.True(t, ok, "should be a custom *Error")
			assert.Equal(t, tt.code, customErr.Code())
			assert.Equal(t, tt.message, customErr.Error())

			// Test nil original error for new errors
			assert.Nil(t, customErr.Unwrap())
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(InvalidConfig, "population size %d must be positive", -4)

	customErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, InvalidConfig, customErr.Code())
	assert.Equal(t, "population size -4 must be positive", customErr.Error())
}

// TestWrapError tests error wrapping functionality.
func TestWrapError(t *testing.T) {
	originalErr := stderrors.New("original error")

	tests := []struct {
		name       string
		err        error
		code       ErrorCode
		wrapMsg    string
		expectNil  bool
		expectCode ErrorCode
	}{
		{
			name:       "Wrap normal error",
			err:        originalErr,
			code:       TrainingFailed,
			wrapMsg:    "member 3 training step",
			expectNil:  false,
			expectCode: TrainingFailed,
		},
		{
			name:      "Wrap nil error",
			err:       nil,
			code:      TrainingFailed,
			wrapMsg:   "member 3 training step",
			expectNil: true,
		},
		{
			name:       "Wrap custom error",
			err:        New(InvalidInput, "NaN return"),
			code:       SelectionFailed,
			wrapMsg:    "selection aborted",
			expectNil:  false,
			expectCode: SelectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, tt.code, tt.wrapMsg)

			if tt.expectNil {
				assert.Nil(t, wrapped)
				return
			}

			assert.NotNil(t, wrapped)

			ourErr := wrapped.(*Error)
			assert.Equal(t, tt.expectCode, ourErr.Code())
			assert.Contains(t, ourErr.Error(), tt.wrapMsg)

			// Verify original error is preserved
			unwrapped := ourErr.Unwrap()
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), unwrapped.Error())
			}
		})
	}
}

// TestErrorInterfaces tests compliance with Go error interfaces.
func TestErrorInterfaces(t *testing.T) {
	t.Run("errors.Is support", func(t *testing.T) {
		err1 := New(InvalidConfig, "first")
		err2 := New(InvalidConfig, "second")
		err3 := New(InvalidInput, "third")

		assert.True(t, stderrors.Is(err1, err2),
			"Errors with same code should match with Is")
		assert.False(t, stderrors.Is(err1, err3),
			"Errors with different codes should not match with Is")
	})

	t.Run("errors.As support", func(t *testing.T) {
		originalErr := New(InvalidInput, "original")
		wrappedErr := Wrap(originalErr, SelectionFailed, "wrapped")

		var customErr *Error
		assert.True(t, stderrors.As(wrappedErr, &customErr),
			"Should be able to extract custom error type")
		assert.Equal(t, SelectionFailed, customErr.Code())
	})

	t.Run("error unwrapping", func(t *testing.T) {
		baseErr := stderrors.New("base error")
		wrapped := Wrap(baseErr, EvaluationFailed, "wrapped error")

		unwrapped := stderrors.Unwrap(wrapped)
		assert.Equal(t, baseErr.Error(), unwrapped.Error())
	})
}

// TestErrorString tests the string representation of errors.
func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "Simple error",
			err:      New(InvalidInput, "population is empty"),
			contains: []string{"population is empty"},
		},
		{
			name: "Wrapped error",
			err: Wrap(
				stderrors.New("disk full"),
				CheckpointFailed,
				"writing generation snapshot",
			),
			contains: []string{
				"writing generation snapshot",
				"disk full",
			},
		},
		{
			name: "Error with fields",
			err: WithFields(
				New(InvalidInput, "non-finite return"),
				Fields{"index": 4},
			),
			contains: []string{
				"non-finite return",
				"index=4",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errString := tt.err.Error()
			for _, str := range tt.contains {
				assert.Contains(t, errString, str,
					"Error string should contain expected message")
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	t.Run("Empty fields", func(t *testing.T) {
		err := New(InvalidConfig, "error")
		customErr := err.(*Error)
		assert.Empty(t, customErr.Fields())
	})

	t.Run("Add fields", func(t *testing.T) {
		fields := Fields{
			"population_size": 8,
			"num_best":        2,
			"num_worse":       2,
		}
		err := WithFields(New(InvalidConfig, "error"), fields)
		customErr := err.(*Error)
		assert.Equal(t, fields, customErr.Fields())
	})

	t.Run("Merge fields", func(t *testing.T) {
		err := WithFields(New(InvalidConfig, "error"), Fields{"a": 1})
		err = WithFields(err, Fields{"b": 2})
		customErr := err.(*Error)
		assert.Len(t, customErr.Fields(), 2)
		assert.Equal(t, 1, customErr.Fields()["a"])
		assert.Equal(t, 2, customErr.Fields()["b"])
	})

	t.Run("Fields returns copy not reference", func(t *testing.T) {
		err := WithFields(New(InvalidConfig, "error"), Fields{"key": "original"})
		customErr := err.(*Error)

		returned := customErr.Fields()
		returned["key"] = "modified"

		assert.Equal(t, "original", customErr.Fields()["key"])
	})

	t.Run("WithFields on non-Error type", func(t *testing.T) {
		baseErr := stderrors.New("base error")
		result := WithFields(baseErr, Fields{"context": "test"})

		customErr, ok := result.(*Error)
		require.True(t, ok)
		assert.Equal(t, Unknown, customErr.Code())
		assert.Equal(t, "test", customErr.Fields()["context"])
	})

	t.Run("WithFields on nil error", func(t *testing.T) {
		assert.Nil(t, WithFields(nil, Fields{"key": "value"}))
	})
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{Unknown, "Unknown"},
		{InvalidInput, "InvalidInput"},
		{InvalidConfig, "InvalidConfig"},
		{ValidationFailed, "ValidationFailed"},
		{ResourceNotFound, "ResourceNotFound"},
		{Timeout, "Timeout"},
		{Canceled, "Canceled"},
		{TrainingFailed, "TrainingFailed"},
		{EvaluationFailed, "EvaluationFailed"},
		{SelectionFailed, "SelectionFailed"},
		{CheckpointFailed, "CheckpointFailed"},
		{ErrorCode(999), "ErrorCode(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestCodeOf(t *testing.T) {
	t.Run("structured error", func(t *testing.T) {
		assert.Equal(t, InvalidInput, CodeOf(New(InvalidInput, "bad")))
	})

	t.Run("wrapped structured error", func(t *testing.T) {
		err := Wrap(New(InvalidConfig, "inner"), SelectionFailed, "outer")
		assert.Equal(t, SelectionFailed, CodeOf(err))
	})

	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, Unknown, CodeOf(stderrors.New("plain")))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.Equal(t, Unknown, CodeOf(nil))
	})
}

func TestCheckContext(t *testing.T) {
	t.Run("live context", func(t *testing.T) {
		assert.NoError(t, CheckContext(context.Background(), "training"))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := CheckContext(ctx, "training")
		require.Error(t, err)
		assert.Equal(t, Canceled, CodeOf(err))
		assert.Contains(t, err.Error(), "training canceled")
	})
}
