package booking

import (
	"fmt"

	"chefbook/models"
)

// Event is an externally triggered request to move a booking between states.
type Event string

const (
	EventAccept   Event = "accept"
	EventReject   Event = "reject"
	EventComplete Event = "complete"
)

// TransitionContext carries the guard inputs for a transition request.
type TransitionContext struct {
	// RejectionReason is required for EventReject.
	RejectionReason string
	// EventDatePassed is true once the booking's requested date is in the past.
	EventDatePassed bool
	// AdminOverride lets an operator complete a booking before its date.
	AdminOverride bool
}

// Transition is the pure state-machine function. It validates that ev is
// legal from current and returns the next status, without touching any
// storage. Callers apply the result with a compare-and-swap write so that
// two concurrent transitions cannot both win.
func Transition(current models.BookingStatus, ev Event, tc TransitionContext) (models.BookingStatus, error) {
	switch ev {
	case EventAccept:
		if current == models.StatusPending {
			return models.StatusConfirmed, nil
		}
	case EventReject:
		// Legal from pending (chef declines) and from confirmed
		// (cancellation after acceptance, e.g. a no-show).
		if current == models.StatusPending || current == models.StatusConfirmed {
			if tc.RejectionReason == "" {
				return current, NewValidationError("rejection reason must not be empty")
			}
			return models.StatusCancelled, nil
		}
	case EventComplete:
		if current == models.StatusConfirmed {
			if !tc.EventDatePassed && !tc.AdminOverride {
				return current, NewInvalidTransitionError("booking cannot be completed before its event date")
			}
			return models.StatusCompleted, nil
		}
	default:
		return current, NewInvalidTransitionError(fmt.Sprintf("unknown event %q", ev))
	}
	return current, NewInvalidTransitionError(fmt.Sprintf("cannot %s a %s booking", ev, current))
}
