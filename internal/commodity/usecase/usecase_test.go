package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/testutil"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog() (*commodityUseCase, *testutil.CommodityStore) {
	store := testutil.NewCommodityStore()
	uc := NewCommodityUseCase(store, cache.NewMemoryCache(), time.Hour, logger.NewNop()).(*commodityUseCase)
	return uc, store
}

func TestImportCommodities(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	n, err := uc.ImportCommodities(ctx, []dto.CommodityInput{
		{Ticker: " rat ", Name: "Basic Rations", Category: "consumables (basic)", Weight: decimal.RequireFromString("0.21"), Volume: decimal.RequireFromString("0.1")},
		{Ticker: "H2O", Name: "Water", Category: "liquids", Weight: decimal.RequireFromString("0.2"), Volume: decimal.RequireFromString("0.2")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	c, err := uc.GetCommodity(ctx, "rat")
	require.NoError(t, err)
	assert.Equal(t, "RAT", c.Ticker)
	assert.Equal(t, "Basic Rations", c.Name)
	assert.True(t, c.Weight.Equal(decimal.RequireFromString("0.21")))

	items, total, err := uc.ListCommodities(ctx, &dto.CommodityFilters{Query: "wat"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "H2O", items[0].Ticker)
}

func TestImportCommodities_rejectsBadBatch(t *testing.T) {
	tests := []struct {
		name  string
		items []dto.CommodityInput
	}{
		{"empty", nil},
		{"no ticker", []dto.CommodityInput{{Name: "Water"}}},
		{"no name", []dto.CommodityInput{{Ticker: "H2O"}}},
		{"negative weight", []dto.CommodityInput{{Ticker: "H2O", Name: "Water", Weight: decimal.NewFromInt(-1)}}},
		{"duplicate", []dto.CommodityInput{{Ticker: "H2O", Name: "Water"}, {Ticker: "h2o", Name: "Water"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, store := newCatalog()
			_, err := uc.ImportCommodities(context.Background(), tt.items)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", err)

			tickers, _ := store.ListTickers(context.Background())
			assert.Empty(t, tickers)
		})
	}
}

func TestGetCommodity_missingIsNotFoundUntilImported(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	_, err := uc.GetCommodity(ctx, "DW")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = uc.ImportCommodities(ctx, []dto.CommodityInput{{Ticker: "DW", Name: "Drinking Water"}})
	require.NoError(t, err)

	c, err := uc.GetCommodity(ctx, "DW")
	require.NoError(t, err)
	assert.Equal(t, "Drinking Water", c.Name)
}

func TestValidateTicker(t *testing.T) {
	uc, store := newCatalog()
	ctx := context.Background()

	assert.NoError(t, uc.ValidateTicker(ctx, "ANY"), "empty catalog accepts everything")

	_, err := uc.ImportCommodities(ctx, []dto.CommodityInput{{Ticker: "RAT", Name: "Basic Rations"}})
	require.NoError(t, err)

	assert.NoError(t, uc.ValidateTicker(ctx, "rat"))
	assert.True(t, apperr.Is(uc.ValidateTicker(ctx, "XYZ"), apperr.KindValidation))

	reads := store.TickerReads
	require.NoError(t, uc.ValidateTicker(ctx, "RAT"))
	assert.Equal(t, reads, store.TickerReads, "ticker set is served from cache")
}
