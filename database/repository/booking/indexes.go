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

// ensureIndexes creates indexes for fields frequently used in queries.
// The partial unique index on the slot fields only covers confirmed
// bookings, so any number of pending requests may share a slot while at
// most one can ever hold confirmed. A second accept racing past the
// in-transaction re-check hits the index instead and fails with a
// duplicate-key error.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "requested_date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "requested_date", Value: 1}, {Key: "requested_time", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.StatusConfirmed}).
				SetName("unique_confirmed_slot"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
