package availability

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
)

type UseCase interface {
	ComputeSellAvailability(ctx context.Context, orders []model.SellOrder) (map[string]Result, error)
	GetSellAvailability(ctx context.Context, order *model.SellOrder) (Result, error)
	ComputeBuyRemaining(ctx context.Context, orders []model.BuyOrder) (map[string]BuyResult, error)
	GetBuyRemaining(ctx context.Context, order *model.BuyOrder) (BuyResult, error)
}
