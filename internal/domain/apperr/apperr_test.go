package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad", nil), KindValidation},
		{"auth", Auth("no"), KindAuth},
		{"not found wrapped", fmt.Errorf("get: %w", NotFound("missing")), KindNotFound},
		{"conflict", Conflict("dup"), KindConflict},
		{"state", State("already"), KindState},
		{"internal", Internal("oops", errors.New("db")), KindInternal},
		{"plain error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Server error", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal: Server error: connection reset", err.Error())

	e, ok := As(fmt.Errorf("wrap: %w", err))
	require.True(t, ok)
	assert.Equal(t, "Server error", e.Message)
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("Validation failed", map[string]string{"title": "is required"})
	assert.Equal(t, "is required", err.Fields["title"])
	assert.Equal(t, "validation: Validation failed", err.Error())
}
