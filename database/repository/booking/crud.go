package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"chefbook/database"
	"chefbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoBookingRepo implements Repository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() Repository {
	db := database.MongoClient.Database("chefbook")
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}

	if err := repo.ensureIndexes(); err != nil {
		zap.L().Error("failed to create booking indexes", zap.Error(err))
	}
	return repo
}

func (repo *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking %s: %w", b.ID, err)
	}
	return nil
}

func (repo *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking with id %s: %w", id, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (repo *MongoBookingRepo) FindConfirmedBySlot(ctx context.Context, slot models.Slot) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return findConfirmedBySlot(ctx, repo.coll, slot)
}

// findConfirmedBySlot is shared with the transactional confirm path, which
// must run the same query under its session context.
func findConfirmedBySlot(ctx context.Context, coll *mongo.Collection, slot models.Slot) (*models.Booking, error) {
	filter := bson.M{
		"status":         models.StatusConfirmed,
		"requested_date": slot.Date,
		"requested_time": slot.Time,
	}
	var b models.Booking
	if err := coll.FindOne(ctx, filter).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying confirmed booking for slot %s %s: %w", slot.Date, slot.Time, err)
	}
	return &b, nil
}

func (repo *MongoBookingRepo) ListByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return repo.list(ctx, filter)
}

func (repo *MongoBookingRepo) ListConfirmedBefore(ctx context.Context, date string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"status":         models.StatusConfirmed,
		"requested_date": bson.M{"$lt": date},
	}
	return repo.list(ctx, filter)
}

func (repo *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return bookings, nil
}
