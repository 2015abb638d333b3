package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("booking", nil), http.StatusNotFound},
		{Validation("appointment time is required", nil), http.StatusBadRequest},
		{Forbidden("booking belongs to another doctor"), http.StatusForbidden},
		{BusyDoctor("Dr. John Smith"), http.StatusConflict},
		{Conflict("booking is no longer pending"), http.StatusConflict},
		{Store(errors.New("connection refused")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestKindChecks(t *testing.T) {
	err := NotFound("booking", nil)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))

	// Kind survives wrapping.
	wrapped := fmt.Errorf("handling request: %w", err)
	assert.True(t, IsNotFound(wrapped))

	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Store(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "no rows")
}

func TestBusyDoctorMessage(t *testing.T) {
	err := BusyDoctor("Dr. Mary Jones")
	assert.Equal(t, "Dr. Mary Jones is currently busy, please select another doctor", err.Message)
}
