package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	catalogRepo "chefbook/database/repository/catalog"
	"chefbook/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Quote is the pricing for one booking request, in minor currency units.
type Quote struct {
	PricePerPerson int64 `json:"pricePerPerson"`
	TotalPrice     int64 `json:"totalPrice"`
}

// PricingResolver computes the price of a booking from its menu template.
type PricingResolver interface {
	Resolve(ctx context.Context, templateID string, partySize int) (*Quote, error)
}

// DefaultPricingResolver reads template prices from the catalog, with a
// read-through cache so repeated quotes for the same template skip the
// catalog round trip. Cache is optional; when nil every read hits the catalog.
type DefaultPricingResolver struct {
	Catalog  catalogRepo.Repository
	Cache    *redis.Client
	CacheTTL time.Duration
}

const pricingLookupTimeout = 5 * time.Second

func (r *DefaultPricingResolver) Resolve(ctx context.Context, templateID string, partySize int) (*Quote, error) {
	if partySize < 1 {
		return nil, NewValidationError("party size must be at least 1")
	}

	ctx, cancel := context.WithTimeout(ctx, pricingLookupTimeout)
	defer cancel()

	unitPrice, err := r.unitPrice(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if unitPrice <= 0 {
		return nil, NewPricingUnavailableError(fmt.Sprintf("menu template %s has no price data", templateID))
	}

	return &Quote{
		PricePerPerson: unitPrice,
		TotalPrice:     unitPrice * int64(partySize),
	}, nil
}

func (r *DefaultPricingResolver) unitPrice(ctx context.Context, templateID string) (int64, error) {
	cacheKey := "template:price:" + templateID

	if r.Cache != nil {
		if cached, err := r.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var t models.MenuTemplate
			if err := json.Unmarshal([]byte(cached), &t); err == nil {
				return t.UnitPrice, nil
			}
			// Corrupt cache entry: fall through to the catalog.
		}
	}

	t, err := r.Catalog.GetTemplate(ctx, templateID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrNotFound) {
			return 0, NewProductNotFoundError(fmt.Sprintf("menu template %s does not exist", templateID))
		}
		return 0, fmt.Errorf("pricing lookup for template %s failed: %w", templateID, err)
	}

	if r.Cache != nil {
		if data, err := json.Marshal(t); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, r.CacheTTL).Err(); err != nil {
				zap.L().Warn("failed to cache template price", zap.String("template", templateID), zap.Error(err))
			}
		}
	}

	return t.UnitPrice, nil
}
