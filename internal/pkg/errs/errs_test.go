package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTestOverlap = Define(ErrConflict, "BOOKING_OVERLAP", "spot already booked")

func TestDefinedErrorMatchesKind(t *testing.T) {
	assert.ErrorIs(t, errTestOverlap, ErrConflict)
	assert.NotErrorIs(t, errTestOverlap, ErrNotFound)

	wrapped := fmt.Errorf("create booking: %w", errTestOverlap)
	assert.ErrorIs(t, wrapped, errTestOverlap)
	assert.Equal(t, ErrConflict, KindOf(wrapped))
	assert.Equal(t, "BOOKING_OVERLAP", CodeOf(wrapped))
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
	assert.Equal(t, "spot already booked", MessageOf(wrapped))
}

func TestInternalHidesDetails(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"), "load booking")

	assert.Equal(t, ErrInternal, KindOf(err))
	assert.Equal(t, "INTERNAL_ERROR", CodeOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
}

func TestInternalMatchesKindEverywhere(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := fmt.Errorf("sweep: %w", Internal(cause, "list stale bookings"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrInternal))
	assert.False(t, Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "list stale bookings: i/o timeout")
	assert.Contains(t, fmt.Sprintf("%+v", err), "i/o timeout")
}

func TestInternalKeepsDomainErrors(t *testing.T) {
	err := Internal(errTestOverlap, "create booking")
	assert.Same(t, errTestOverlap, err)
}

func TestMarkedKind(t *testing.T) {
	err := Mark(New("wallet row missing"), ErrNotFound)
	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.Equal(t, "NOT_FOUND", CodeOf(err))
}

func TestRetryableCode(t *testing.T) {
	err := Mark(Mark(New("deadlock detected"), ErrRetryable), ErrInternal)
	assert.Equal(t, "RETRYABLE", CodeOf(err))
	assert.Equal(t, ErrInternal, KindOf(err))
}

func TestValidationMessageVerbatim(t *testing.T) {
	err := Validation("end_time must be after start_time")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "VALIDATION_ERROR", CodeOf(err))
	assert.Equal(t, "end_time must be after start_time", MessageOf(err))
}
