package order

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
)

// Indexer mirrors sell orders into the listing search index.
type Indexer interface {
	IndexSellOrder(ctx context.Context, o *model.SellOrder) error
	DeleteSellOrder(ctx context.Context, id string) error
}

// PriceLists checks that a dynamic order points at an existing price list.
type PriceLists interface {
	ValidatePriceList(ctx context.Context, code string) error
}

// Catalog checks that a commodity ticker is tradeable.
type Catalog interface {
	ValidateTicker(ctx context.Context, ticker string) error
}
