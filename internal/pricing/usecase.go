package pricing

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
)

type UseCase interface {
	ResolveEffectivePrice(ctx context.Context, target model.PriceTarget) (*Resolution, error)
	// ResolveMany is keyed by PriceTarget.OrderID. Unresolved targets map to nil.
	ResolveMany(ctx context.Context, targets []model.PriceTarget) (map[string]*Resolution, error)
	GetOrderDisplayPrice(ctx context.Context, target model.PriceTarget) (DisplayPrice, error)

	// ValidatePriceList reports NotFound for a code with no price list.
	ValidatePriceList(ctx context.Context, code string) error

	ImportPrices(ctx context.Context, code string, prices []model.Price) error
	InvalidatePriceList(ctx context.Context, code string) error
}
