package order

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order/dto"
)

type Repository interface {
	CreateSellOrder(ctx context.Context, o *model.SellOrder) error
	FindSellOrderByID(ctx context.Context, id string) (*model.SellOrder, error)
	ListSellOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.SellOrder, int, error)
	UpdateSellOrder(ctx context.Context, o *model.SellOrder) error
	DeleteSellOrder(ctx context.Context, id string) error

	CreateBuyOrder(ctx context.Context, o *model.BuyOrder) error
	FindBuyOrderByID(ctx context.Context, id string) (*model.BuyOrder, error)
	ListBuyOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.BuyOrder, int, error)
	UpdateBuyOrder(ctx context.Context, o *model.BuyOrder) error
	DeleteBuyOrder(ctx context.Context, id string) error

	// Check (owner, ticker, location, type, currency) uniqueness
	IsSellOrderUnique(ctx context.Context, key model.OrderKey, excludeID string) (bool, error)
	IsBuyOrderUnique(ctx context.Context, key model.OrderKey, excludeID string) (bool, error)
}
