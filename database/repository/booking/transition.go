package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"chefbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UpdateStatus applies a state transition with a compare-and-swap on the
// status field. The filter matches both id and the expected current status,
// so a concurrent transition that already moved the booking makes this write
// match nothing.
func (repo *MongoBookingRepo) UpdateStatus(ctx context.Context, id string, expected, next models.BookingStatus, fields bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return casUpdateStatus(ctx, repo.coll, id, expected, next, fields)
}

func casUpdateStatus(ctx context.Context, coll *mongo.Collection, id string, expected, next models.BookingStatus, fields bson.M) (*models.Booking, error) {
	set := bson.M{
		"status":     next,
		"updated_at": time.Now(),
	}
	for k, v := range fields {
		set[k] = v
	}

	filter := bson.M{"id": id, "status": expected}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		// The unique_confirmed_slot index rejected the write: another
		// booking reached confirmed for this slot first.
		return nil, ErrSlotTaken
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to update booking %s status: %w", id, err)
	}

	// Distinguish a missing booking from a stale status.
	count, countErr := coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("failed to update booking %s status: %w", id, countErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStaleStatus
}

// ConfirmTransactionally moves a pending booking to confirmed. The conflict
// re-check runs in the same transaction as the CAS write, but mongo
// transactions use snapshot isolation, so two accepts reading the same
// snapshot would both see the slot free. The unique_confirmed_slot partial
// index is what actually serializes them: the second commit trips a
// duplicate-key error, which casUpdateStatus maps to ErrSlotTaken.
func (repo *MongoBookingRepo) ConfirmTransactionally(ctx context.Context, id string, slot models.Slot, fields bson.M) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := repo.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	var confirmed *models.Booking
	txnFn := func(sc mongo.SessionContext) error {
		holder, err := findConfirmedBySlot(sc, repo.coll, slot)
		if err != nil {
			return err
		}
		if holder != nil && holder.ID != id {
			return fmt.Errorf("%w (booking %s)", ErrSlotTaken, holder.ID)
		}

		updated, err := casUpdateStatus(sc, repo.coll, id, models.StatusPending, models.StatusConfirmed, fields)
		if err != nil {
			return err
		}
		confirmed = updated
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return nil, err
	}

	return confirmed, nil
}
