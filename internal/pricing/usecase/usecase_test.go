package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	lists      map[string]model.PriceList
	prices     []model.Price
	listReads  int
	priceReads int
}

func (f *fakeRepo) GetPriceList(_ context.Context, code string) (*model.PriceList, error) {
	l, ok := f.lists[code]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (f *fakeRepo) BatchGetPriceLists(_ context.Context, codes []string) ([]model.PriceList, error) {
	f.listReads++
	var out []model.PriceList
	for _, c := range codes {
		if l, ok := f.lists[c]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeRepo) BatchGetPrices(_ context.Context, codes, tickers []string) ([]model.Price, error) {
	f.priceReads++
	return f.prices, nil
}

func (f *fakeRepo) UpsertPrices(_ context.Context, prices []model.Price) error {
	f.prices = append(f.prices, prices...)
	return nil
}

func strPtr(s string) *string { return &s }

func newFixture() *fakeRepo {
	return &fakeRepo{
		lists: map[string]model.PriceList{
			"KAWA": {Code: "KAWA", Currency: "AIC", DefaultLocationID: strPtr("BEN")},
		},
		prices: []model.Price{
			{PriceListCode: "KAWA", CommodityTicker: "RAT", LocationID: "BEN", Price: decimal.NewFromInt(35)},
		},
	}
}

func targets() []model.PriceTarget {
	return []model.PriceTarget{
		{OrderID: "fixed", CommodityTicker: "RAT", LocationID: "MOR", Price: decimal.NewFromInt(50), Currency: "NCC"},
		{OrderID: "dyn", CommodityTicker: "RAT", LocationID: "MOR", Currency: "ICA", PriceListCode: strPtr("KAWA")},
		{OrderID: "miss", CommodityTicker: "DW", LocationID: "MOR", Currency: "ICA", PriceListCode: strPtr("KAWA")},
	}
}

func TestResolveMany_singleQueryPerKind(t *testing.T) {
	repo := newFixture()
	uc := NewPricingUseCase(repo, cache.NewMemoryCache(), time.Minute, logger.NewNop())

	res, err := uc.ResolveMany(context.Background(), targets())

	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.False(t, res["fixed"].IsFallback)
	assert.True(t, res["dyn"].IsFallback)
	assert.Equal(t, "BEN", res["dyn"].SourceLocationID)
	assert.Nil(t, res["miss"])
	assert.Equal(t, 1, repo.listReads)
	assert.Equal(t, 1, repo.priceReads)
}

func TestResolveEffectivePrice_matchesBatch(t *testing.T) {
	repo := newFixture()
	uc := NewPricingUseCase(repo, cache.NewMemoryCache(), time.Minute, logger.NewNop())
	ctx := context.Background()

	batch, err := uc.ResolveMany(ctx, targets())
	require.NoError(t, err)

	for _, target := range targets() {
		single, err := uc.ResolveEffectivePrice(ctx, target)
		require.NoError(t, err)
		assert.Equal(t, batch[target.OrderID], single, target.OrderID)
	}
}

func TestPriceListsAreCachedUntilInvalidated(t *testing.T) {
	repo := newFixture()
	uc := NewPricingUseCase(repo, cache.NewMemoryCache(), time.Hour, logger.NewNop())
	ctx := context.Background()
	dyn := targets()[1]

	_, err := uc.ResolveEffectivePrice(ctx, dyn)
	require.NoError(t, err)
	_, err = uc.ResolveEffectivePrice(ctx, dyn)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listReads)

	repo.lists["KAWA"] = model.PriceList{Code: "KAWA", Currency: "CIS", DefaultLocationID: strPtr("BEN")}
	require.NoError(t, uc.InvalidatePriceList(ctx, "KAWA"))

	r, err := uc.ResolveEffectivePrice(ctx, dyn)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listReads)
	assert.Equal(t, "CIS", r.Currency)
}

func TestGetOrderDisplayPrice(t *testing.T) {
	uc := NewPricingUseCase(newFixture(), cache.NewMemoryCache(), time.Minute, logger.NewNop())
	ctx := context.Background()

	d, err := uc.GetOrderDisplayPrice(ctx, targets()[2])
	require.NoError(t, err)
	assert.Equal(t, "??", d.String())

	d, err = uc.GetOrderDisplayPrice(ctx, targets()[0])
	require.NoError(t, err)
	assert.Equal(t, "50.00 NCC", d.String())
}

func TestImportPrices(t *testing.T) {
	repo := newFixture()
	uc := NewPricingUseCase(repo, cache.NewMemoryCache(), time.Minute, logger.NewNop())
	ctx := context.Background()

	err := uc.ImportPrices(ctx, "KAWA", []model.Price{{CommodityTicker: "dw", LocationID: "MOR", Price: decimal.NewFromInt(9)}})
	require.NoError(t, err)

	d, err := uc.GetOrderDisplayPrice(ctx, targets()[2])
	require.NoError(t, err)
	assert.Equal(t, "9.00 AIC", d.String())

	err = uc.ImportPrices(ctx, "NOPE", nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = uc.ImportPrices(ctx, "KAWA", []model.Price{{CommodityTicker: "DW", LocationID: "MOR", Price: decimal.Zero}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestValidatePriceList(t *testing.T) {
	repo := newFixture()
	uc := NewPricingUseCase(repo, cache.NewMemoryCache(), time.Hour, logger.NewNop())
	ctx := context.Background()

	assert.NoError(t, uc.ValidatePriceList(ctx, "KAWA"))
	assert.NoError(t, uc.ValidatePriceList(ctx, "KAWA"))
	assert.Equal(t, 1, repo.listReads)

	err := uc.ValidatePriceList(ctx, "KAWAA")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "%v", err)
}
