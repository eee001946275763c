package handler

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/auth"
	"github.com/fekuna/prun-market-service/internal/availability"
	"github.com/fekuna/prun-market-service/internal/commodity"
	commodityDTO "github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/market"
	marketDTO "github.com/fekuna/prun-market-service/internal/market/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order"
	orderDTO "github.com/fekuna/prun-market-service/internal/order/dto"
	"github.com/fekuna/prun-market-service/internal/pricing"
	"github.com/fekuna/prun-market-service/internal/reservation"
	reservationDTO "github.com/fekuna/prun-market-service/internal/reservation/dto"
	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type MarketHandler struct {
	market       market.UseCase
	orders       order.UseCase
	availability availability.UseCase
	pricing      pricing.UseCase
	reservations reservation.UseCase
	settings     settings.UseCase
	catalog      commodity.UseCase
	logger       logger.ZapLogger
	pageSize     int
}

func NewMarketHandler(
	m market.UseCase,
	orders order.UseCase,
	avail availability.UseCase,
	prices pricing.UseCase,
	reservations reservation.UseCase,
	st settings.UseCase,
	catalog commodity.UseCase,
	log logger.ZapLogger,
) *MarketHandler {
	return &MarketHandler{
		market:       m,
		orders:       orders,
		availability: avail,
		pricing:      prices,
		reservations: reservations,
		settings:     st,
		catalog:      catalog,
		logger:       log,
	}
}

// WithDefaultPageSize sets the page size used when a list request leaves it
// unset. Zero returns every row.
func (h *MarketHandler) WithDefaultPageSize(n int) *MarketHandler {
	h.pageSize = n
	return h
}

func (h *MarketHandler) pageOf(in *structpb.Struct) (int, int, error) {
	page, err := num(in, "page")
	if err != nil {
		return 0, 0, err
	}
	size, err := num(in, "page_size")
	if err != nil {
		return 0, 0, err
	}
	if size <= 0 {
		size = h.pageSize
	}
	if size > 0 && page <= 0 {
		page = 1
	}
	return page, size, nil
}

// fail maps err to a status, logging anything that is not a business rejection.
func (h *MarketHandler) fail(method string, err error) error {
	if apperr.KindOf(err) == 0 {
		h.logger.Error("request failed", zap.String("method", method), zap.Error(err))
	}
	return apperr.ToGRPC(err)
}

func requireUser(ctx context.Context) (string, error) {
	userID := auth.GetUserID(ctx)
	if userID == "" {
		return "", status.Error(codes.Unauthenticated, "missing user")
	}
	return userID, nil
}

func (h *MarketHandler) listingFilters(ctx context.Context, in *structpb.Struct) (*marketDTO.ListingFilters, error) {
	page, size, err := h.pageOf(in)
	if err != nil {
		return nil, err
	}
	return &marketDTO.ListingFilters{
		ViewerID:        auth.GetUserID(ctx),
		ChannelID:       auth.GetChannelID(ctx),
		CommodityTicker: str(in, "commodity_ticker"),
		LocationID:      str(in, "location_id"),
		OwnerID:         str(in, "owner_id"),
		OrderType:       model.OrderType(str(in, "order_type")),
		Query:           str(in, "query"),
		OnlyAvailable:   boolean(in, "only_available"),
		Page:            page,
		PageSize:        size,
	}, nil
}

// --- Listings ---

func (h *MarketHandler) ListSellListings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := h.listingFilters(ctx, in)
	if err != nil {
		return nil, h.fail("ListSellListings", err)
	}
	items, total, err := h.market.ListSellListings(ctx, f)
	if err != nil {
		return nil, h.fail("ListSellListings", err)
	}
	return toStruct(map[string]interface{}{"items": items, "total": total, "page": f.Page, "page_size": f.PageSize})
}

func (h *MarketHandler) ListBuyListings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f, err := h.listingFilters(ctx, in)
	if err != nil {
		return nil, h.fail("ListBuyListings", err)
	}
	items, total, err := h.market.ListBuyListings(ctx, f)
	if err != nil {
		return nil, h.fail("ListBuyListings", err)
	}
	return toStruct(map[string]interface{}{"items": items, "total": total, "page": f.Page, "page_size": f.PageSize})
}

func (h *MarketHandler) GetSellAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	o, err := h.orders.GetSellOrder(ctx, str(in, "order_id"))
	if err != nil {
		return nil, h.fail("GetSellAvailability", err)
	}
	res, err := h.availability.GetSellAvailability(ctx, o)
	if err != nil {
		return nil, h.fail("GetSellAvailability", err)
	}
	return toStruct(map[string]interface{}{"order_id": o.ID, "availability": res})
}

func (h *MarketHandler) GetBuyRemaining(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	o, err := h.orders.GetBuyOrder(ctx, str(in, "order_id"))
	if err != nil {
		return nil, h.fail("GetBuyRemaining", err)
	}
	res, err := h.availability.GetBuyRemaining(ctx, o)
	if err != nil {
		return nil, h.fail("GetBuyRemaining", err)
	}
	return toStruct(map[string]interface{}{"order_id": o.ID, "remaining": res})
}

func (h *MarketHandler) ResolvePrice(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var target model.PriceTarget
	switch model.OrderKind(str(in, "order_kind")) {
	case model.OrderKindSell:
		o, err := h.orders.GetSellOrder(ctx, str(in, "order_id"))
		if err != nil {
			return nil, h.fail("ResolvePrice", err)
		}
		target = o.PriceTarget()
	case model.OrderKindBuy:
		o, err := h.orders.GetBuyOrder(ctx, str(in, "order_id"))
		if err != nil {
			return nil, h.fail("ResolvePrice", err)
		}
		target = o.PriceTarget()
	default:
		return nil, h.fail("ResolvePrice", apperr.Validation("order_kind must be sell or buy"))
	}

	r, err := h.pricing.ResolveEffectivePrice(ctx, target)
	if err != nil {
		return nil, h.fail("ResolvePrice", err)
	}
	return toStruct(map[string]interface{}{
		"order_id":   target.OrderID,
		"resolution": r,
		"display":    pricing.NewDisplayPrice(target, r).String(),
	})
}

// --- Reservations ---

func (h *MarketHandler) CreateReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	expiresAt, err := optTime(in, "expires_at")
	if err != nil {
		return nil, h.fail("CreateReservation", err)
	}
	quantity, err := num(in, "quantity")
	if err != nil {
		return nil, h.fail("CreateReservation", err)
	}

	r, err := h.reservations.CreateReservation(ctx, &reservationDTO.CreateReservationInput{
		ActorID:     userID,
		ChannelID:   auth.GetChannelID(ctx),
		SellOrderID: str(in, "sell_order_id"),
		BuyOrderID:  str(in, "buy_order_id"),
		Quantity:    quantity,
		Notes:       str(in, "notes"),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		return nil, h.fail("CreateReservation", err)
	}
	return toStruct(map[string]interface{}{"reservation": r})
}

func (h *MarketHandler) UpdateReservationStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	r, err := h.reservations.UpdateReservationStatus(ctx, &reservationDTO.UpdateStatusInput{
		ReservationID: str(in, "reservation_id"),
		ActorID:       userID,
		Status:        model.ReservationStatus(str(in, "status")),
		Notes:         optStr(in, "notes"),
	})
	if err != nil {
		return nil, h.fail("UpdateReservationStatus", err)
	}
	return toStruct(map[string]interface{}{"success": true, "reservation": r})
}

func (h *MarketHandler) GetReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	r, err := h.reservations.GetReservation(ctx, str(in, "reservation_id"), userID)
	if err != nil {
		return nil, h.fail("GetReservation", err)
	}
	return toStruct(map[string]interface{}{"reservation": r})
}

func (h *MarketHandler) ListReservations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var statuses []model.ReservationStatus
	for _, s := range strList(in, "statuses") {
		statuses = append(statuses, model.ReservationStatus(s))
	}
	page, size, err := h.pageOf(in)
	if err != nil {
		return nil, h.fail("ListReservations", err)
	}
	filters := &reservationDTO.ReservationFilters{
		UserID:   userID,
		Statuses: statuses,
		Page:     page,
		PageSize: size,
	}

	items, total, err := h.reservations.ListForUser(ctx, filters)
	if err != nil {
		return nil, h.fail("ListReservations", err)
	}
	return toStruct(map[string]interface{}{"items": items, "total": total, "page": filters.Page, "page_size": filters.PageSize})
}

// --- Orders ---

func (h *MarketHandler) CreateSellOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	price, err := money(in, "price")
	if err != nil {
		return nil, h.fail("CreateSellOrder", err)
	}
	limit, err := optNum(in, "limit_quantity")
	if err != nil {
		return nil, h.fail("CreateSellOrder", err)
	}

	o, err := h.orders.CreateSellOrder(ctx, &orderDTO.CreateSellOrderInput{
		ActorID:         userID,
		ChannelID:       auth.GetChannelID(ctx),
		CommodityTicker: str(in, "commodity_ticker"),
		LocationID:      str(in, "location_id"),
		Price:           price,
		Currency:        str(in, "currency"),
		Dynamic:         boolean(in, "dynamic") || str(in, "price_list_code") != "",
		PriceListCode:   str(in, "price_list_code"),
		OrderType:       model.OrderType(str(in, "order_type")),
		LimitMode:       model.LimitMode(str(in, "limit_mode")),
		LimitQuantity:   limit,
	})
	if err != nil {
		return nil, h.fail("CreateSellOrder", err)
	}
	return toStruct(map[string]interface{}{"order": o})
}

func (h *MarketHandler) UpdateSellOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	price, err := money(in, "price")
	if err != nil {
		return nil, h.fail("UpdateSellOrder", err)
	}
	limit, err := optNum(in, "limit_quantity")
	if err != nil {
		return nil, h.fail("UpdateSellOrder", err)
	}

	o, err := h.orders.UpdateSellOrder(ctx, &orderDTO.UpdateSellOrderInput{
		ID:            str(in, "order_id"),
		ActorID:       userID,
		Price:         price,
		Currency:      str(in, "currency"),
		PriceListCode: str(in, "price_list_code"),
		OrderType:     model.OrderType(str(in, "order_type")),
		LimitMode:     model.LimitMode(str(in, "limit_mode")),
		LimitQuantity: limit,
	})
	if err != nil {
		return nil, h.fail("UpdateSellOrder", err)
	}
	return toStruct(map[string]interface{}{"order": o})
}

func (h *MarketHandler) DeleteSellOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.orders.DeleteSellOrder(ctx, str(in, "order_id"), userID); err != nil {
		return nil, h.fail("DeleteSellOrder", err)
	}
	return toStruct(map[string]interface{}{"success": true})
}

func (h *MarketHandler) CreateBuyOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	price, err := money(in, "price")
	if err != nil {
		return nil, h.fail("CreateBuyOrder", err)
	}
	quantity, err := num(in, "quantity")
	if err != nil {
		return nil, h.fail("CreateBuyOrder", err)
	}

	o, err := h.orders.CreateBuyOrder(ctx, &orderDTO.CreateBuyOrderInput{
		ActorID:         userID,
		ChannelID:       auth.GetChannelID(ctx),
		CommodityTicker: str(in, "commodity_ticker"),
		LocationID:      str(in, "location_id"),
		Quantity:        quantity,
		Price:           price,
		Currency:        str(in, "currency"),
		Dynamic:         boolean(in, "dynamic") || str(in, "price_list_code") != "",
		PriceListCode:   str(in, "price_list_code"),
		OrderType:       model.OrderType(str(in, "order_type")),
	})
	if err != nil {
		return nil, h.fail("CreateBuyOrder", err)
	}
	return toStruct(map[string]interface{}{"order": o})
}

func (h *MarketHandler) UpdateBuyOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	price, err := money(in, "price")
	if err != nil {
		return nil, h.fail("UpdateBuyOrder", err)
	}
	quantity, err := num(in, "quantity")
	if err != nil {
		return nil, h.fail("UpdateBuyOrder", err)
	}

	o, err := h.orders.UpdateBuyOrder(ctx, &orderDTO.UpdateBuyOrderInput{
		ID:            str(in, "order_id"),
		ActorID:       userID,
		Quantity:      quantity,
		Price:         price,
		Currency:      str(in, "currency"),
		PriceListCode: str(in, "price_list_code"),
		OrderType:     model.OrderType(str(in, "order_type")),
	})
	if err != nil {
		return nil, h.fail("UpdateBuyOrder", err)
	}
	return toStruct(map[string]interface{}{"order": o})
}

func (h *MarketHandler) DeleteBuyOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.orders.DeleteBuyOrder(ctx, str(in, "order_id"), userID); err != nil {
		return nil, h.fail("DeleteBuyOrder", err)
	}
	return toStruct(map[string]interface{}{"success": true})
}

// --- Settings ---

func (h *MarketHandler) SetUserSetting(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.settings.SetUserSetting(ctx, userID, settings.Key(str(in, "key")), str(in, "value")); err != nil {
		return nil, h.fail("SetUserSetting", err)
	}
	return toStruct(map[string]interface{}{"success": true})
}

func (h *MarketHandler) SetChannelSetting(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	channelID := auth.GetChannelID(ctx)
	if channelID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing channel")
	}
	if err := h.settings.SetChannelSetting(ctx, channelID, settings.Key(str(in, "key")), str(in, "value")); err != nil {
		return nil, h.fail("SetChannelSetting", err)
	}
	return toStruct(map[string]interface{}{"success": true})
}

// --- Catalog ---

func (h *MarketHandler) GetCommodity(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := h.catalog.GetCommodity(ctx, str(in, "ticker"))
	if err != nil {
		return nil, h.fail("GetCommodity", err)
	}
	return toStruct(c)
}

func (h *MarketHandler) ListCommodities(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	page, size, err := h.pageOf(in)
	if err != nil {
		return nil, h.fail("ListCommodities", err)
	}
	filters := &commodityDTO.CommodityFilters{
		Category: str(in, "category"),
		Query:    str(in, "query"),
		Page:     page,
		PageSize: size,
	}
	items, total, err := h.catalog.ListCommodities(ctx, filters)
	if err != nil {
		return nil, h.fail("ListCommodities", err)
	}
	return toStruct(map[string]interface{}{"items": items, "total": total, "page": page, "page_size": size})
}

func (h *MarketHandler) ImportCommodities(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	var items []commodityDTO.CommodityInput
	for _, row := range structList(in, "items") {
		weight, err := money(row, "weight")
		if err != nil {
			return nil, h.fail("ImportCommodities", err)
		}
		volume, err := money(row, "volume")
		if err != nil {
			return nil, h.fail("ImportCommodities", err)
		}
		items = append(items, commodityDTO.CommodityInput{
			Ticker:   str(row, "ticker"),
			Name:     str(row, "name"),
			Category: str(row, "category"),
			Weight:   weight,
			Volume:   volume,
		})
	}

	n, err := h.catalog.ImportCommodities(ctx, items)
	if err != nil {
		return nil, h.fail("ImportCommodities", err)
	}
	return toStruct(map[string]interface{}{"imported": n})
}

// --- Price lists ---

func (h *MarketHandler) ImportPrices(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	code := str(in, "price_list_code")
	var prices []model.Price
	for _, row := range structList(in, "prices") {
		p, err := money(row, "price")
		if err != nil {
			return nil, h.fail("ImportPrices", err)
		}
		prices = append(prices, model.Price{
			PriceListCode:   code,
			CommodityTicker: str(row, "commodity_ticker"),
			LocationID:      str(row, "location_id"),
			Price:           p,
		})
	}

	if err := h.pricing.ImportPrices(ctx, code, prices); err != nil {
		return nil, h.fail("ImportPrices", err)
	}
	return toStruct(map[string]interface{}{"imported": len(prices)})
}
