package commodity

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/model"
)

type UseCase interface {
	GetCommodity(ctx context.Context, ticker string) (*model.Commodity, error)
	ListCommodities(ctx context.Context, filters *dto.CommodityFilters) ([]model.Commodity, int, error)
	ImportCommodities(ctx context.Context, items []dto.CommodityInput) (int, error)

	// ValidateTicker rejects tickers missing from a loaded catalog. An empty
	// catalog accepts everything.
	ValidateTicker(ctx context.Context, ticker string) error
}
