package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	cr "github.com/cockroachdb/errors"
)

// Failure kinds. Every error returned by a service belongs to exactly one of
// them; clients branch on the kind (or the finer Code), never on the text.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
)

var kindCodes = map[error]string{
	ErrValidation:        "VALIDATION_ERROR",
	ErrNotFound:          "NOT_FOUND",
	ErrConflict:          "CONFLICT",
	ErrInsufficientFunds: "INSUFFICIENT_FUNDS",
	ErrForbidden:         "FORBIDDEN",
	ErrInternal:          "INTERNAL_ERROR",
}

var kindStatus = map[error]int{
	ErrValidation:        http.StatusBadRequest,
	ErrNotFound:          http.StatusNotFound,
	ErrConflict:          http.StatusConflict,
	ErrInsufficientFunds: http.StatusPaymentRequired,
	ErrForbidden:         http.StatusForbidden,
	ErrInternal:          http.StatusInternalServerError,
}

// Error is a domain failure with a stable machine-readable code.
type Error struct {
	Code    string
	Message string
	kind    error
}

func (e *Error) Error() string { return e.Message }

// Is reports kind membership, so errors.Is(err, ErrConflict) matches every
// conflict-kind Error.
func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Kind() error { return e.kind }

// Define declares a sentinel domain error of the given kind.
func Define(kind error, code, message string) *Error {
	return &Error{Code: code, Message: message, kind: kind}
}

// Validation builds an ad hoc validation failure that is surfaced verbatim.
func Validation(format string, args ...any) error {
	return &Error{Code: kindCodes[ErrValidation], Message: fmt.Sprintf(format, args...), kind: ErrValidation}
}

func New(msg string) error {
	return cr.New(msg)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

// Internal wraps an unexpected failure (usually from the store) and marks it
// ErrInternal unless it already carries a domain kind. The result matches
// ErrInternal under both errors.Is and Is.
func Internal(err error, msg string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != ErrInternal {
		return err
	}
	return &internalError{cause: cr.Mark(cr.Wrap(err, msg), ErrInternal)}
}

type internalError struct {
	cause error
}

func (e *internalError) Error() string { return e.cause.Error() }

func (e *internalError) Unwrap() error { return e.cause }

func (e *internalError) Is(target error) bool { return target == ErrInternal }

func (e *internalError) Format(s fmt.State, verb rune) { cr.FormatError(e, s, verb) }

// Is reports whether err matches target through a stdlib Is method, a
// wrap chain, or a cockroachdb mark.
func Is(err, target error) bool {
	return errors.Is(err, target) || cr.Is(err, target)
}

// KindOf classifies err; anything unrecognised is ErrInternal.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrInsufficientFunds, ErrForbidden} {
		if Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// CodeOf returns the most specific machine code available for err.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	if Is(err, ErrRetryable) {
		return "RETRYABLE"
	}
	return kindCodes[KindOf(err)]
}

// MessageOf returns the user-facing message; internal details never leak.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if KindOf(err) == ErrInternal {
		return "internal error"
	}
	return err.Error()
}

func HTTPStatus(err error) int {
	if status, ok := kindStatus[KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrRetryable marks transaction failures (serialization, deadlock, lock
// timeout) that exhausted the retry budget; the whole operation is safe to
// retry.
var ErrRetryable = errors.New("retryable transaction failure")

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
