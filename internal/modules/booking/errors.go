package booking

import "parkly/internal/pkg/errs"

var (
	ErrInvalidWindow     = errs.Define(errs.ErrValidation, "INVALID_TIME_WINDOW", "start time must be before end time")
	ErrPastStartTime     = errs.Define(errs.ErrValidation, "PAST_START_TIME", "start time is in the past")
	ErrInvalidExtension  = errs.Define(errs.ErrValidation, "INVALID_EXTENSION", "extension must be between 1 minute and 24 hours")
	ErrBookingNotFound   = errs.Define(errs.ErrNotFound, "BOOKING_NOT_FOUND", "booking not found")
	ErrTokenNotFound     = errs.Define(errs.ErrNotFound, "TOKEN_NOT_FOUND", "no booking matches this QR code")
	ErrVehicleNotFound   = errs.Define(errs.ErrNotFound, "VEHICLE_NOT_FOUND", "vehicle not found")
	ErrOverlap           = errs.Define(errs.ErrConflict, "BOOKING_OVERLAP", "spot is already booked for this time")
	ErrDuplicateActive   = errs.Define(errs.ErrConflict, "DUPLICATE_ACTIVE_BOOKING", "you already have a pending or active booking")
	ErrInvalidState      = errs.Define(errs.ErrConflict, "INVALID_STATE", "booking status does not allow this operation")
	ErrAlreadyStarted    = errs.Define(errs.ErrConflict, "ALREADY_STARTED", "booking has already started")
	ErrPasswordMismatch  = errs.Define(errs.ErrForbidden, "INVALID_PASSWORD", "password is incorrect")
	ErrMaxWindowExceeded = errs.Define(errs.ErrValidation, "WINDOW_TOO_LONG", "booking window exceeds the maximum length")
)
