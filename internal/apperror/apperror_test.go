package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
	}{
		{
			name:       "not found",
			err:        NotFound("user not found", nil),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict",
			err:        Conflict("username already exists", nil),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "validation",
			err:        Validation("validation failed", nil),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid argument",
			err:        InvalidArgument("invalid id", nil),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "external",
			err:        External("upstream unavailable", nil),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "internal",
			err:        Internal("db error", nil),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode())
		})
	}
}

func TestErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("db error", cause)

	assert.Equal(t, "db error: connection refused", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))

	bare := NotFound("user not found", nil)
	assert.Equal(t, "user not found", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}

func TestIsKindThroughWrapping(t *testing.T) {
	inner := Conflict("email already exists", nil)
	wrapped := fmt.Errorf("services.user.create: %w", inner)

	require.True(t, IsKind(wrapped, KindConflict))
	assert.True(t, IsConflict(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsKind(errors.New("plain error"), KindConflict))
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("missing", nil)))
	assert.True(t, IsValidation(Validation("bad input", nil)))
	assert.False(t, IsConflict(nil))
}
