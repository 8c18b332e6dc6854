package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := Serialization("failed to write report", os.ErrPermission)
	assert.Equal(t, "serialization error: failed to write report: permission denied", err.Error())

	plain := New(ErrorTypeConfig, "top_n must be positive", nil)
	assert.Equal(t, "config error: top_n must be positive", plain.Error())
}

func TestTypeOfWrapped(t *testing.T) {
	err := fmt.Errorf("run failed: %w", Serialization("sink", os.ErrPermission))

	assert.Equal(t, ErrorTypeSerialization, TypeOf(err))
	assert.True(t, IsSerialization(err))
	assert.True(t, stderrors.Is(err, os.ErrPermission))

	assert.Equal(t, ErrorTypeUnknown, TypeOf(stderrors.New("plain")))
	assert.False(t, IsSerialization(nil))
	assert.False(t, IsSerialization(Input("bad json", nil)))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		expected  bool
	}{
		{ErrorTypeValidation, false},
		{ErrorTypeSerialization, true},
		{ErrorTypeInput, true},
		{ErrorTypeConfig, true},
		{ErrorTypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.expected, IsFatal(tt.errorType))
		})
	}
}
