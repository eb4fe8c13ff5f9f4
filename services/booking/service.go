package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "chefbook/database/repository/booking"
	"chefbook/models"
	"chefbook/services/notification"
	"chefbook/services/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.Repository
	Pricing      PricingResolver
	Conflicts    ConflictChecker
	Notifier     notification.Dispatcher
	Engine       *workflow.Engine
	MaxPartySize int
	Logger       *zap.Logger
}

func (s *DefaultBookingService) RequestBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	saga := &creationSaga{svc: s, input: input}
	res := s.Engine.Execute(ctx, saga.steps())
	if err := res.Err(); err != nil {
		s.Logger.Warn("booking creation saga failed",
			zap.String("failedStep", res.FailedStep),
			zap.String("outcome", string(res.Outcome)),
			zap.Error(err))
		return nil, err
	}

	s.Logger.Info("booking request created",
		zap.String("bookingId", saga.booking.ID),
		zap.String("template", input.TemplateProductID),
		zap.Int64("totalPrice", saga.booking.TotalPrice))
	return saga.booking, nil
}

// validateInput rejects malformed requests before the saga starts, so no
// compensation is ever needed for bad input.
func (s *DefaultBookingService) validateInput(input models.BookingInput) error {
	if input.TemplateProductID == "" {
		return NewValidationError("templateProductId is required")
	}
	if input.PartySize < 1 {
		return NewValidationError("partySize must be at least 1")
	}
	if s.MaxPartySize > 0 && input.PartySize > s.MaxPartySize {
		return NewValidationError(fmt.Sprintf("partySize must not exceed %d", s.MaxPartySize))
	}
	if _, err := time.Parse("2006-01-02", input.RequestedDate); err != nil {
		return NewValidationError("requestedDate must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", input.RequestedTime); err != nil {
		return NewValidationError("requestedTime must be in HH:MM format")
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return NewValidationError("customer name is required")
	}
	if !strings.Contains(input.Customer.Email, "@") {
		return NewValidationError("customer email is required")
	}
	if strings.TrimSpace(input.Customer.Phone) == "" {
		return NewValidationError("customer phone is required")
	}
	return nil
}

func (s *DefaultBookingService) AcceptBooking(ctx context.Context, id, acceptedBy, chefID string) (*models.Booking, error) {
	if acceptedBy == "" {
		return nil, NewValidationError("acceptedBy is required")
	}

	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	// Pre-validate against the state machine; the store re-verifies with a
	// compare-and-swap so a concurrent transition still loses cleanly.
	if _, err := Transition(b.Status, EventAccept, TransitionContext{}); err != nil {
		return nil, err
	}

	fields := bson.M{
		"accepted_at": time.Now(),
		"accepted_by": acceptedBy,
	}
	if chefID != "" {
		fields["assigned_chef_id"] = chefID
	}

	confirmed, err := s.Repo.ConfirmTransactionally(ctx, id, b.Slot(), fields)
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrSlotTaken):
			return nil, NewConflictError(err.Error())
		case errors.Is(err, bookingRepo.ErrStaleStatus):
			return nil, NewInvalidTransitionError(fmt.Sprintf("booking %s is no longer pending", id))
		case errors.Is(err, bookingRepo.ErrNotFound):
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", id))
		default:
			return nil, &Error{Code: CodePersistence, Message: fmt.Sprintf("could not confirm booking %s: %v", id, err)}
		}
	}

	if err := s.Notifier.BookingAccepted(ctx, confirmed); err != nil {
		s.Logger.Warn("acceptance notification failed", zap.String("bookingId", id), zap.Error(err))
	}

	s.Logger.Info("booking accepted",
		zap.String("bookingId", id),
		zap.String("acceptedBy", acceptedBy))
	return confirmed, nil
}

func (s *DefaultBookingService) RejectBooking(ctx context.Context, id, reason, notes string) (*models.Booking, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := Transition(b.Status, EventReject, TransitionContext{RejectionReason: reason}); err != nil {
		return nil, err
	}

	fields := bson.M{"rejection_reason": reason}
	if notes != "" {
		fields["chef_notes"] = notes
	}

	cancelled, err := s.Repo.UpdateStatus(ctx, id, b.Status, models.StatusCancelled, fields)
	if err != nil {
		return nil, s.mapTransitionErr(id, err)
	}

	if err := s.Notifier.BookingRejected(ctx, cancelled); err != nil {
		s.Logger.Warn("rejection notification failed", zap.String("bookingId", id), zap.Error(err))
	}

	s.Logger.Info("booking rejected",
		zap.String("bookingId", id),
		zap.String("reason", reason))
	return cancelled, nil
}

func (s *DefaultBookingService) CompleteBooking(ctx context.Context, id string, force bool) (*models.Booking, error) {
	b, err := s.getBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	today := time.Now().Format("2006-01-02")
	tc := TransitionContext{
		EventDatePassed: b.RequestedDate < today,
		AdminOverride:   force,
	}
	if _, err := Transition(b.Status, EventComplete, tc); err != nil {
		return nil, err
	}

	completed, err := s.Repo.UpdateStatus(ctx, id, b.Status, models.StatusCompleted, nil)
	if err != nil {
		return nil, s.mapTransitionErr(id, err)
	}

	s.Logger.Info("booking completed", zap.String("bookingId", id))
	return completed, nil
}

func (s *DefaultBookingService) CompletePastBookings(ctx context.Context) (int, error) {
	today := time.Now().Format("2006-01-02")
	past, err := s.Repo.ListConfirmedBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("could not list past confirmed bookings: %w", err)
	}

	completed := 0
	for _, b := range past {
		if _, err := s.CompleteBooking(ctx, b.ID, false); err != nil {
			// A race with an admin action is fine; log and keep sweeping.
			s.Logger.Warn("auto-completion skipped booking",
				zap.String("bookingId", b.ID),
				zap.Error(err))
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.getBooking(ctx, id)
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	bookings, err := s.Repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, &Error{Code: CodePersistence, Message: fmt.Sprintf("could not list bookings: %v", err)}
	}
	return bookings, nil
}

func (s *DefaultBookingService) getBooking(ctx context.Context, id string) (*models.Booking, error) {
	if id == "" {
		return nil, NewValidationError("booking id is required")
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", id))
		}
		return nil, &Error{Code: CodePersistence, Message: fmt.Sprintf("could not load booking %s: %v", id, err)}
	}
	return b, nil
}

func (s *DefaultBookingService) mapTransitionErr(id string, err error) error {
	switch {
	case errors.Is(err, bookingRepo.ErrStaleStatus):
		return NewInvalidTransitionError(fmt.Sprintf("booking %s changed status concurrently", id))
	case errors.Is(err, bookingRepo.ErrNotFound):
		return NewNotFoundError(fmt.Sprintf("booking %s not found", id))
	default:
		return &Error{Code: CodePersistence, Message: fmt.Sprintf("could not update booking %s: %v", id, err)}
	}
}
