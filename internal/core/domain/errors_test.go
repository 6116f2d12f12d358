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
		{"ErrConfigMissing", ErrConfigMissing},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrSourceUnavailable", ErrSourceUnavailable},
		{"ErrNotFound", ErrNotFound},
		{"ErrAuthInvalid", ErrAuthInvalid},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrContentTooLarge", ErrContentTooLarge},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrIndexWrite", ErrIndexWrite},
		{"ErrConnection", ErrConnection},
		{"ErrInvalidQuery", ErrInvalidQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrSourceUnavailable))
	assert.False(t, errors.Is(ErrIndexWrite, ErrConnection))
	assert.False(t, errors.Is(ErrUnsupportedFormat, ErrInvalidInput))
}

func TestUnsupportedFormatError(t *testing.T) {
	err := &UnsupportedFormatError{Ext: ".xyz"}

	assert.Equal(t, "unsupported format: .xyz", err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestUnsupportedFormatError_NoExtension(t *testing.T) {
	err := &UnsupportedFormatError{}
	assert.Contains(t, err.Error(), "no extension")
}

func TestUnsupportedFormatError_Wrapped(t *testing.T) {
	err := fmt.Errorf("extract notes: %w", &UnsupportedFormatError{Ext: ".bin"})

	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	var ufe *UnsupportedFormatError
	assert.True(t, errors.As(err, &ufe))
	assert.Equal(t, ".bin", ufe.Ext)
}
