package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad input", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"not found", NewNotFound("ticket", nil), "NOT_FOUND", http.StatusNotFound},
		{"unauthorized", NewUnauthorized("no token"), "UNAUTHORIZED", http.StatusUnauthorized},
		{"forbidden", NewForbidden("heads only"), "FORBIDDEN", http.StatusForbidden},
		{"conflict", NewConflict("assignee inactive", nil), "CONFLICT", http.StatusConflict},
		{"concurrent", NewConcurrentModification("ticket", nil), "CONCURRENT_MODIFICATION", http.StatusConflict},
		{"internal", NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var de *DomainError
			require.ErrorAs(t, tc.err, &de)
			assert.Equal(t, tc.code, de.Code)
			assert.Equal(t, tc.status, de.HTTPStatus)
			assert.True(t, IsCode(tc.err, tc.code))
		})
	}
}

func TestIsCodeRejectsForeignErrors(t *testing.T) {
	assert.False(t, IsCode(errors.New("plain"), "NOT_FOUND"))
	assert.False(t, IsCode(nil, "NOT_FOUND"))
	assert.False(t, IsCode(NewForbidden("nope"), "NOT_FOUND"))
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.NotNil(t, de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("socket closed")
	de := ToDomainError(cause)
	require.NotNil(t, de)
	assert.Equal(t, "INTERNAL_ERROR", de.Code)
	assert.ErrorIs(t, de, cause)
}

func TestMapErrorPreservesDomainErrors(t *testing.T) {
	original := NewConflict("dup", map[string]any{"k": "v"})
	mapped := MapError(original)
	assert.Same(t, original.(*DomainError), mapped.(*DomainError))
	assert.Nil(t, MapError(nil))
}
