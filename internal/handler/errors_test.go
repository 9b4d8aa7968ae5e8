package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mearah/craftbom/internal/domain"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrItemNotFound, http.StatusNotFound},
		{domain.ErrInvalidQuantity, http.StatusBadRequest},
		{domain.ErrInvalidKind, http.StatusBadRequest},
		{domain.ErrCycleDetected, http.StatusUnprocessableEntity},
		{domain.ErrIntegrityViolation, http.StatusConflict},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, statusForError(tt.err), "%v", tt.err)
	}
}

func TestStatusForWrappedError(t *testing.T) {
	// Handlers see errors after several layers of wrapping
	err := fmt.Errorf("batch request 1 (product:99): %w",
		fmt.Errorf("failed to get item: %w", domain.ErrItemNotFound))
	assert.Equal(t, http.StatusNotFound, statusForError(err))
}
