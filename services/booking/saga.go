package booking

import (
	"context"
	"fmt"
	"time"

	"chefbook/models"
	"chefbook/services/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// creationSaga is the shared state of the booking-creation workflow. Each
// step reads the outputs of the steps before it; the compensation of the
// persist step deletes the row it created.
type creationSaga struct {
	svc   *DefaultBookingService
	input models.BookingInput

	quote   *Quote
	booking *models.Booking
}

func (s *creationSaga) steps() []workflow.Step {
	return []workflow.Step{
		{
			// Pure read, nothing to compensate.
			Name: "resolve pricing",
			Run:  s.resolvePricing,
		},
		{
			Name: "check conflicts",
			Run:  s.checkConflicts,
		},
		{
			Name:       "persist booking",
			Run:        s.persistBooking,
			Compensate: s.deleteBooking,
		},
		{
			Name: "dispatch notification",
			Run:  s.notifyOperator,
		},
	}
}

func (s *creationSaga) resolvePricing(ctx context.Context) error {
	quote, err := s.svc.Pricing.Resolve(ctx, s.input.TemplateProductID, s.input.PartySize)
	if err != nil {
		return err
	}
	s.quote = quote
	return nil
}

func (s *creationSaga) checkConflicts(ctx context.Context) error {
	slot := models.Slot{Date: s.input.RequestedDate, Time: s.input.RequestedTime}
	res := s.svc.Conflicts.Check(ctx, slot)
	if !res.Conflict {
		return nil
	}
	if res.BookingID != "" {
		return NewConflictError(fmt.Sprintf("slot %s %s is already confirmed for booking %s",
			slot.Date, slot.Time, res.BookingID))
	}
	return NewConflictError(fmt.Sprintf("could not verify availability of slot %s %s", slot.Date, slot.Time))
}

func (s *creationSaga) persistBooking(ctx context.Context) error {
	now := time.Now()
	b := &models.Booking{
		ID:                uuid.New().String(),
		Status:            models.StatusPending,
		TemplateProductID: s.input.TemplateProductID,
		RequestedDate:     s.input.RequestedDate,
		RequestedTime:     s.input.RequestedTime,
		PartySize:         s.input.PartySize,
		EventType:         s.input.EventType,
		LocationType:      s.input.LocationType,
		LocationAddress:   s.input.LocationAddress,
		Customer:          s.input.Customer,
		PricePerPerson:    s.quote.PricePerPerson,
		TotalPrice:        s.quote.TotalPrice,
		AssignedChefID:    s.input.AssignedChefID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.svc.Repo.Create(ctx, b); err != nil {
		return &Error{Code: CodePersistence, Message: fmt.Sprintf("could not store booking: %v", err)}
	}
	s.booking = b
	return nil
}

func (s *creationSaga) deleteBooking(ctx context.Context) error {
	if s.booking == nil {
		return nil
	}
	if err := s.svc.Repo.Delete(ctx, s.booking.ID); err != nil {
		return fmt.Errorf("could not retract booking %s: %w", s.booking.ID, err)
	}
	return nil
}

// notifyOperator never fails the saga: the booking row is already durable,
// and a failed send must not unwind it. The dispatcher logs the failure and
// queues the message for out-of-band retry.
func (s *creationSaga) notifyOperator(ctx context.Context) error {
	if err := s.svc.Notifier.BookingRequested(ctx, s.booking); err != nil {
		s.svc.Logger.Warn("booking created but operator notification failed",
			zap.String("bookingId", s.booking.ID),
			zap.Error(err))
	}
	return nil
}
