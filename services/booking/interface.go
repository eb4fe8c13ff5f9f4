package booking

import (
	"context"

	"chefbook/models"
)

// BookingService is the core contract exposed to adapters (HTTP layer,
// background workers). Field names in models are the canonical contract.
type BookingService interface {
	// RequestBooking runs the creation saga: price resolution, conflict
	// check, persistence, notification. On success the returned booking is
	// durably stored with status pending.
	RequestBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	// AcceptBooking transitions a pending booking to confirmed. The slot
	// conflict check is re-run inside the same transaction as the status
	// write.
	AcceptBooking(ctx context.Context, id, acceptedBy, chefID string) (*models.Booking, error)
	// RejectBooking cancels a pending or confirmed booking. reason is
	// required.
	RejectBooking(ctx context.Context, id, reason, notes string) (*models.Booking, error)
	// CompleteBooking transitions a confirmed booking to completed once the
	// event date has passed, or immediately when force is set.
	CompleteBooking(ctx context.Context, id string, force bool) (*models.Booking, error)
	// CompletePastBookings sweeps confirmed bookings whose event date has
	// passed and completes them. Returns the number completed.
	CompletePastBookings(ctx context.Context) (int, error)

	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
}
