package bookingRepo

import (
	"context"
	"errors"

	"chefbook/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrStaleStatus is returned when a compare-and-swap update observes a
	// status other than the expected one (a concurrent transition won).
	ErrStaleStatus = errors.New("booking status changed concurrently")
	// ErrSlotTaken is returned by ConfirmTransactionally when another booking
	// already holds the slot in confirmed status.
	ErrSlotTaken = errors.New("slot already held by a confirmed booking")
)

// Repository defines the interface for booking data access.
type Repository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	// FindConfirmedBySlot returns the confirmed booking occupying the exact
	// slot, or nil when the slot is free.
	FindConfirmedBySlot(ctx context.Context, slot models.Slot) (*models.Booking, error)
	ListByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	// ListConfirmedBefore returns confirmed bookings whose requested date is
	// strictly before the given "YYYY-MM-DD" date.
	ListConfirmedBefore(ctx context.Context, date string) ([]models.Booking, error)
	// UpdateStatus performs a compare-and-swap transition: the write only
	// applies if the stored status still equals expected. fields are extra
	// $set values written atomically with the new status.
	UpdateStatus(ctx context.Context, id string, expected, next models.BookingStatus, fields bson.M) (*models.Booking, error)
	// ConfirmTransactionally re-checks the slot for a conflicting confirmed
	// booking and performs the pending -> confirmed CAS write inside a single
	// transaction.
	ConfirmTransactionally(ctx context.Context, id string, slot models.Slot, fields bson.M) (*models.Booking, error)
}
