package usecase

import (
	"context"
	"strings"

	"github.com/fekuna/prun-market-service/internal/availability"
	"github.com/fekuna/prun-market-service/internal/market"
	"github.com/fekuna/prun-market-service/internal/market/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order"
	orderDTO "github.com/fekuna/prun-market-service/internal/order/dto"
	"github.com/fekuna/prun-market-service/internal/pricing"
	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
)

type marketUseCase struct {
	orders       order.Repository
	availability availability.UseCase
	pricing      pricing.UseCase
	settings     settings.UseCase
	searcher     market.Searcher
	logger       logger.ZapLogger
}

// NewMarketUseCase builds the listing view. searcher may be nil.
func NewMarketUseCase(
	orders order.Repository,
	avail availability.UseCase,
	prices pricing.UseCase,
	st settings.UseCase,
	searcher market.Searcher,
	log logger.ZapLogger,
) market.UseCase {
	return &marketUseCase{
		orders:       orders,
		availability: avail,
		pricing:      prices,
		settings:     st,
		searcher:     searcher,
		logger:       log,
	}
}

func (uc *marketUseCase) ListSellListings(ctx context.Context, filters *dto.ListingFilters) ([]market.SellListing, int, error) {
	orderType, err := uc.visibleType(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	orders, err := uc.findSellOrders(ctx, filters, orderType)
	if err != nil {
		return nil, 0, err
	}

	avail, err := uc.availability.ComputeSellAvailability(ctx, orders)
	if err != nil {
		return nil, 0, err
	}

	targets := make([]model.PriceTarget, len(orders))
	for i := range orders {
		targets[i] = orders[i].PriceTarget()
	}
	prices, err := uc.pricing.ResolveMany(ctx, targets)
	if err != nil {
		return nil, 0, err
	}

	items := make([]market.SellListing, 0, len(orders))
	for _, o := range orders {
		a := avail[o.ID]
		if filters.OnlyAvailable && a.RemainingQuantity <= 0 {
			continue
		}
		items = append(items, market.SellListing{Order: o, Availability: a, Price: prices[o.ID]})
	}

	market.SortSellListings(items)
	return market.Paginate(items, filters.Page, filters.PageSize), len(items), nil
}

func (uc *marketUseCase) ListBuyListings(ctx context.Context, filters *dto.ListingFilters) ([]market.BuyListing, int, error) {
	orderType, err := uc.visibleType(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	orders, _, err := uc.orders.ListBuyOrders(ctx, orderFilters(filters, orderType, filters.CommodityTicker))
	if err != nil {
		return nil, 0, err
	}

	remaining, err := uc.availability.ComputeBuyRemaining(ctx, orders)
	if err != nil {
		return nil, 0, err
	}

	targets := make([]model.PriceTarget, len(orders))
	for i := range orders {
		targets[i] = orders[i].PriceTarget()
	}
	prices, err := uc.pricing.ResolveMany(ctx, targets)
	if err != nil {
		return nil, 0, err
	}

	items := make([]market.BuyListing, 0, len(orders))
	for _, o := range orders {
		r := remaining[o.ID]
		if filters.OnlyAvailable && r.RemainingQuantity <= 0 {
			continue
		}
		items = append(items, market.BuyListing{Order: o, Remaining: r, Price: prices[o.ID]})
	}

	market.SortBuyListings(items)
	return market.Paginate(items, filters.Page, filters.PageSize), len(items), nil
}

// findSellOrders uses the search index for free-text queries and falls back
// to treating the query as a ticker when the index is absent or failing.
func (uc *marketUseCase) findSellOrders(ctx context.Context, filters *dto.ListingFilters, orderType model.OrderType) ([]model.SellOrder, error) {
	query := strings.TrimSpace(filters.Query)
	if query != "" && uc.searcher != nil {
		scoped := *filters
		scoped.OrderType = orderType
		orders, err := uc.searcher.SearchSellOrders(ctx, &scoped)
		if err == nil {
			return orders, nil
		}
		uc.logger.Error("listing search failed, falling back to DB", zap.Error(err))
	}

	ticker := filters.CommodityTicker
	if ticker == "" {
		ticker = query
	}
	orders, _, err := uc.orders.ListSellOrders(ctx, orderFilters(filters, orderType, ticker))
	return orders, err
}

// visibleType applies the listing_visibility setting when no type is asked for.
func (uc *marketUseCase) visibleType(ctx context.Context, filters *dto.ListingFilters) (model.OrderType, error) {
	if filters.OrderType != "" {
		return filters.OrderType, nil
	}
	resolved, err := uc.settings.Effective(ctx, &settings.ResolveInput{UserID: filters.ViewerID, ChannelID: filters.ChannelID})
	if err != nil {
		return "", err
	}
	switch v := model.OrderType(resolved.Get(settings.KeyListingVisibility)); v {
	case model.OrderTypeInternal, model.OrderTypePartner:
		return v, nil
	}
	return "", nil
}

// Pagination happens after sorting, so the store returns every match.
func orderFilters(f *dto.ListingFilters, orderType model.OrderType, ticker string) *orderDTO.OrderFilters {
	return &orderDTO.OrderFilters{
		OwnerID:         f.OwnerID,
		CommodityTicker: ticker,
		LocationID:      f.LocationID,
		OrderType:       orderType,
	}
}
