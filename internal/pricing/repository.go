package pricing

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
)

type Repository interface {
	GetPriceList(ctx context.Context, code string) (*model.PriceList, error)
	BatchGetPriceLists(ctx context.Context, codes []string) ([]model.PriceList, error)

	// BatchGetPrices returns every price row whose list is in codes and whose
	// ticker is in tickers, across all locations.
	BatchGetPrices(ctx context.Context, codes, tickers []string) ([]model.Price, error)
	UpsertPrices(ctx context.Context, prices []model.Price) error
}
