package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/commodity"
	"github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
)

const tickersKey = "commodities:tickers"

func commodityKey(ticker string) string { return "commodity:" + ticker }

type commodityUseCase struct {
	repo   commodity.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger logger.ZapLogger
	now    func() time.Time
}

func NewCommodityUseCase(repo commodity.Repository, c cache.Cache, ttl time.Duration, log logger.ZapLogger) commodity.UseCase {
	return &commodityUseCase{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: log,
		now:    time.Now,
	}
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func (uc *commodityUseCase) GetCommodity(ctx context.Context, ticker string) (*model.Commodity, error) {
	ticker = normalizeTicker(ticker)
	if ticker == "" {
		return nil, apperr.Validation("ticker is required")
	}

	c, err := cache.GetOrCompute(ctx, uc.cache, commodityKey(ticker), uc.ttl, func(ctx context.Context) (*model.Commodity, error) {
		return uc.repo.FindByTicker(ctx, ticker)
	})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFoundf("commodity %s not found", ticker)
	}
	return c, nil
}

func (uc *commodityUseCase) ListCommodities(ctx context.Context, filters *dto.CommodityFilters) ([]model.Commodity, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *commodityUseCase) ValidateTicker(ctx context.Context, ticker string) error {
	tickers, err := cache.GetOrCompute(ctx, uc.cache, tickersKey, uc.ttl, uc.repo.ListTickers)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		return nil
	}

	ticker = normalizeTicker(ticker)
	for _, t := range tickers {
		if t == ticker {
			return nil
		}
	}
	return apperr.Validationf("unknown commodity %q", ticker)
}

// ImportCommodities replaces catalog entries by ticker and returns how many
// were written. The whole batch is rejected if any entry is invalid.
func (uc *commodityUseCase) ImportCommodities(ctx context.Context, items []dto.CommodityInput) (int, error) {
	if len(items) == 0 {
		return 0, apperr.Validation("at least one commodity is required")
	}

	now := uc.now()
	seen := make(map[string]struct{}, len(items))
	rows := make([]model.Commodity, 0, len(items))
	keys := []string{tickersKey}
	for _, in := range items {
		ticker := normalizeTicker(in.Ticker)
		switch {
		case ticker == "":
			return 0, apperr.Validation("ticker is required")
		case strings.TrimSpace(in.Name) == "":
			return 0, apperr.Validationf("commodity %s needs a name", ticker)
		case in.Weight.IsNegative() || in.Volume.IsNegative():
			return 0, apperr.Validationf("commodity %s has a negative weight or volume", ticker)
		}
		if _, dup := seen[ticker]; dup {
			return 0, apperr.Validationf("commodity %s appears twice", ticker)
		}
		seen[ticker] = struct{}{}

		rows = append(rows, model.Commodity{
			Ticker:    ticker,
			Name:      strings.TrimSpace(in.Name),
			Category:  strings.TrimSpace(in.Category),
			Weight:    in.Weight,
			Volume:    in.Volume,
			UpdatedAt: now,
		})
		keys = append(keys, commodityKey(ticker))
	}

	if err := uc.repo.UpsertMany(ctx, rows); err != nil {
		return 0, err
	}
	if err := cache.Invalidate(ctx, uc.cache, keys...); err != nil {
		uc.logger.Warn("failed to invalidate commodity cache", zap.Error(err))
	}

	uc.logger.Info("commodities imported", zap.Int("count", len(rows)))
	return len(rows), nil
}
