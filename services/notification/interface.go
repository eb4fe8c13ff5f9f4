package notification

import (
	"context"

	"chefbook/models"
)

// Sender delivers a structured message to the operator's channel. The
// transport behind it (push, email, SMS) is an external collaborator; the
// booking workflow only depends on this interface.
type Sender interface {
	Send(ctx context.Context, n models.Notification) error
}

// Dispatcher formats and sends the workflow's booking notifications. Sends
// are fire-and-forget from the workflow's point of view: a failed send is
// logged, queued for out-of-band retry, and reported as a notification error
// that callers treat as a warning, never as a reason to roll back a booking.
type Dispatcher interface {
	BookingRequested(ctx context.Context, b *models.Booking) error
	BookingAccepted(ctx context.Context, b *models.Booking) error
	BookingRejected(ctx context.Context, b *models.Booking) error
}
