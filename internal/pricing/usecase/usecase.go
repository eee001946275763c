package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/pricing"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
)

type pricingUseCase struct {
	repo   pricing.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewPricingUseCase(repo pricing.Repository, c cache.Cache, ttl time.Duration, log logger.ZapLogger) pricing.UseCase {
	return &pricingUseCase{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: log,
	}
}

func priceListKey(code string) string { return "pricelist:" + code }

func (uc *pricingUseCase) ResolveEffectivePrice(ctx context.Context, target model.PriceTarget) (*pricing.Resolution, error) {
	res, err := uc.ResolveMany(ctx, []model.PriceTarget{target})
	if err != nil {
		return nil, err
	}
	return res[target.OrderID], nil
}

func (uc *pricingUseCase) ResolveMany(ctx context.Context, targets []model.PriceTarget) (map[string]*pricing.Resolution, error) {
	var codes, tickers []string
	seenCode := map[string]bool{}
	seenTicker := map[string]bool{}
	for _, t := range targets {
		if !t.IsDynamic() {
			continue
		}
		if code := *t.PriceListCode; !seenCode[code] {
			seenCode[code] = true
			codes = append(codes, code)
		}
		if !seenTicker[t.CommodityTicker] {
			seenTicker[t.CommodityTicker] = true
			tickers = append(tickers, t.CommodityTicker)
		}
	}

	lists, err := uc.loadPriceLists(ctx, codes)
	if err != nil {
		return nil, err
	}

	prices, err := uc.repo.BatchGetPrices(ctx, codes, tickers)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	idx := pricing.NewPriceIndex(prices)

	out := make(map[string]*pricing.Resolution, len(targets))
	for _, t := range targets {
		var list *model.PriceList
		if t.IsDynamic() {
			list = lists[*t.PriceListCode]
		}
		out[t.OrderID] = pricing.Resolve(t, list, idx)
	}
	return out, nil
}

func (uc *pricingUseCase) GetOrderDisplayPrice(ctx context.Context, target model.PriceTarget) (pricing.DisplayPrice, error) {
	r, err := uc.ResolveEffectivePrice(ctx, target)
	if err != nil {
		return pricing.DisplayPrice{}, err
	}
	return pricing.NewDisplayPrice(target, r), nil
}

func (uc *pricingUseCase) ImportPrices(ctx context.Context, code string, prices []model.Price) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperr.Validation("price list code is required")
	}

	list, err := uc.repo.GetPriceList(ctx, code)
	if err != nil {
		return err
	}
	if list == nil {
		return apperr.NotFoundf("price list %s not found", code)
	}

	for i := range prices {
		prices[i].PriceListCode = code
		prices[i].CommodityTicker = strings.ToUpper(prices[i].CommodityTicker)
		if prices[i].CommodityTicker == "" || prices[i].LocationID == "" {
			return apperr.Validation("ticker and location are required for every price")
		}
		if !prices[i].Price.IsPositive() {
			return apperr.Validationf("price for %s at %s must be positive", prices[i].CommodityTicker, prices[i].LocationID)
		}
	}

	if err := uc.repo.UpsertPrices(ctx, prices); err != nil {
		return err
	}
	return uc.InvalidatePriceList(ctx, code)
}

func (uc *pricingUseCase) InvalidatePriceList(ctx context.Context, code string) error {
	if err := cache.Invalidate(ctx, uc.cache, priceListKey(code)); err != nil {
		uc.logger.Warn("failed to invalidate price list cache", zap.String("code", code), zap.Error(err))
		return err
	}
	return nil
}

func (uc *pricingUseCase) ValidatePriceList(ctx context.Context, code string) error {
	lists, err := uc.loadPriceLists(ctx, []string{code})
	if err != nil {
		return err
	}
	if lists[code] == nil {
		return apperr.NotFoundf("price list %s not found", code)
	}
	return nil
}

// loadPriceLists reads lists from the cache and fetches the misses in one query.
func (uc *pricingUseCase) loadPriceLists(ctx context.Context, codes []string) (map[string]*model.PriceList, error) {
	lists := make(map[string]*model.PriceList, len(codes))
	var misses []string

	for _, code := range codes {
		raw, ok, err := uc.cache.Get(ctx, priceListKey(code))
		if err != nil || !ok {
			misses = append(misses, code)
			continue
		}
		var l model.PriceList
		if err := json.Unmarshal(raw, &l); err != nil {
			misses = append(misses, code)
			continue
		}
		lists[code] = &l
	}

	if len(misses) == 0 {
		return lists, nil
	}

	fetched, err := uc.repo.BatchGetPriceLists(ctx, misses)
	if err != nil {
		return nil, fmt.Errorf("load price lists: %w", err)
	}
	for i := range fetched {
		l := fetched[i]
		lists[l.Code] = &l
		if data, err := json.Marshal(l); err == nil {
			if err := uc.cache.Set(ctx, priceListKey(l.Code), data, uc.ttl); err != nil {
				uc.logger.Debug("price list cache write failed", zap.String("code", l.Code), zap.Error(err))
			}
		}
	}
	return lists, nil
}
