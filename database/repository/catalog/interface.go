package catalogRepo

import (
	"context"
	"errors"

	"chefbook/models"
)

// ErrNotFound is returned when no template matches the given id.
var ErrNotFound = errors.New("menu template not found")

// Repository defines the interface for menu template data access.
type Repository interface {
	GetTemplate(ctx context.Context, id string) (*models.MenuTemplate, error)
	Upsert(ctx context.Context, t *models.MenuTemplate) error
	ListActive(ctx context.Context) ([]models.MenuTemplate, error)
}
