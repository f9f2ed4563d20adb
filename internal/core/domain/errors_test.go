package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotImplemented", ErrNotImplemented},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrDisposed", ErrDisposed},
		{"ErrFrozen", ErrFrozen},
		{"ErrRestoreFailed", ErrRestoreFailed},
		{"ErrSurfaceUnavailable", ErrSurfaceUnavailable},
		{"ErrUnserialisable", ErrUnserialisable},
		{"ErrPersistFailed", ErrPersistFailed},
		{"ErrUploadFailed", ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("undo: %w", ErrDisposed)

	assert.True(t, errors.Is(wrapped, ErrDisposed))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "undo: editor disposed", wrapped.Error())
}
