package order

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order/dto"
)

type UseCase interface {
	CreateSellOrder(ctx context.Context, input *dto.CreateSellOrderInput) (*model.SellOrder, error)
	GetSellOrder(ctx context.Context, id string) (*model.SellOrder, error)
	UpdateSellOrder(ctx context.Context, input *dto.UpdateSellOrderInput) (*model.SellOrder, error)
	DeleteSellOrder(ctx context.Context, id, actorID string) error

	CreateBuyOrder(ctx context.Context, input *dto.CreateBuyOrderInput) (*model.BuyOrder, error)
	GetBuyOrder(ctx context.Context, id string) (*model.BuyOrder, error)
	UpdateBuyOrder(ctx context.Context, input *dto.UpdateBuyOrderInput) (*model.BuyOrder, error)
	DeleteBuyOrder(ctx context.Context, id, actorID string) error
}
