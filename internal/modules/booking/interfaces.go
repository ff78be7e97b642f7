package booking

import "context"

// PasswordVerifier checks a user's password against the stored hash.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID int64, plaintext string) (bool, error)
}

// Notifier delivers post-commit booking events. Failures never affect the
// booking outcome.
type Notifier interface {
	Notify(ctx context.Context, userID int64, event string, payload any) error
}

// Event names pushed to the booking owner.
const (
	EventCreated   = "booking.created"
	EventStarted   = "booking.started"
	EventCompleted = "booking.completed"
	EventCanceled  = "booking.canceled"
	EventExtended  = "booking.extended"
	EventUpdated   = "booking.updated"
	EventDeleted   = "booking.deleted"
	EventExpired   = "booking.expired"
)
