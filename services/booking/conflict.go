package booking

import (
	"context"
	"time"

	bookingRepo "chefbook/database/repository/booking"
	"chefbook/models"

	"go.uber.org/zap"
)

// ConflictResult reports whether a slot is already held by a confirmed
// booking, and by which one.
type ConflictResult struct {
	Conflict  bool
	BookingID string
}

// ConflictChecker detects whether a requested slot collides with an existing
// confirmed booking. Matching is exact on (date, time).
type ConflictChecker interface {
	Check(ctx context.Context, slot models.Slot) ConflictResult
}

// DefaultConflictChecker checks slots against the booking store. It fails
// closed: a store error is reported as a conflict rather than risking a
// double-booking.
type DefaultConflictChecker struct {
	Repo bookingRepo.Repository
}

const conflictLookupTimeout = 5 * time.Second

func (c *DefaultConflictChecker) Check(ctx context.Context, slot models.Slot) ConflictResult {
	ctx, cancel := context.WithTimeout(ctx, conflictLookupTimeout)
	defer cancel()

	holder, err := c.Repo.FindConfirmedBySlot(ctx, slot)
	if err != nil {
		zap.L().Error("conflict check failed, treating slot as taken",
			zap.String("date", slot.Date),
			zap.String("time", slot.Time),
			zap.Error(err))
		return ConflictResult{Conflict: true}
	}
	if holder != nil {
		return ConflictResult{Conflict: true, BookingID: holder.ID}
	}
	return ConflictResult{}
}
