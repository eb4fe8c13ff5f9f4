package catalogRepo

import (
	"context"
	"fmt"
	"time"

	"chefbook/database"
	"chefbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCatalogRepo implements Repository using MongoDB.
type MongoCatalogRepo struct {
	coll *mongo.Collection
}

// NewMongoCatalogRepo constructs a new instance of MongoCatalogRepo.
func NewMongoCatalogRepo() Repository {
	db := database.MongoClient.Database("chefbook")
	return &MongoCatalogRepo{coll: db.Collection("menu_templates")}
}

func (repo *MongoCatalogRepo) GetTemplate(ctx context.Context, id string) (*models.MenuTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t models.MenuTemplate
	if err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&t); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching menu template %s: %w", id, err)
	}
	return &t, nil
}

func (repo *MongoCatalogRepo) Upsert(ctx context.Context, t *models.MenuTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	t.UpdatedAt = time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = t.UpdatedAt
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := repo.coll.ReplaceOne(ctx, bson.M{"id": t.ID}, t, opts); err != nil {
		return fmt.Errorf("failed to upsert menu template %s: %w", t.ID, err)
	}
	return nil
}

func (repo *MongoCatalogRepo) ListActive(ctx context.Context) ([]models.MenuTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("error listing menu templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.MenuTemplate
	for cursor.Next(ctx) {
		var t models.MenuTemplate
		if err := cursor.Decode(&t); err != nil {
			return nil, fmt.Errorf("error decoding menu template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return templates, nil
}
