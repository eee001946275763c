package commodity

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/model"
)

type Repository interface {
	FindByTicker(ctx context.Context, ticker string) (*model.Commodity, error)
	FindAll(ctx context.Context, filters *dto.CommodityFilters) ([]model.Commodity, int, error)
	ListTickers(ctx context.Context) ([]string, error)
	UpsertMany(ctx context.Context, items []model.Commodity) error
}
