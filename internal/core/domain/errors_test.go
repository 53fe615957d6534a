package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrInvalidConfig", ErrInvalidConfig},
		{"ErrRetrievalUnavailable", ErrRetrievalUnavailable},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRerankerUnavailable", ErrRerankerUnavailable},
		{"ErrVectorIndexUnavailable", ErrVectorIndexUnavailable},
		{"ErrSearchUnavailable", ErrSearchUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_WrappingPreservesIdentity(t *testing.T) {
	wrapped := fmt.Errorf("chunking src-1: %w", ErrInvalidConfig)

	assert.ErrorIs(t, wrapped, ErrInvalidConfig)
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
	assert.False(t, errors.Is(ErrRetrievalUnavailable, ErrSearchUnavailable))
	assert.False(t, errors.Is(ErrDimensionMismatch, ErrInvalidConfig))
}
