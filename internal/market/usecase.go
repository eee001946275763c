package market

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/market/dto"
	"github.com/fekuna/prun-market-service/internal/model"
)

type UseCase interface {
	ListSellListings(ctx context.Context, filters *dto.ListingFilters) ([]SellListing, int, error)
	ListBuyListings(ctx context.Context, filters *dto.ListingFilters) ([]BuyListing, int, error)
}

// Searcher finds sell orders by free text.
type Searcher interface {
	SearchSellOrders(ctx context.Context, filters *dto.ListingFilters) ([]model.SellOrder, error)
}
