package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order"
	"github.com/fekuna/prun-market-service/internal/order/dto"
	"github.com/fekuna/prun-market-service/internal/reservation"
	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderUseCase struct {
	repo     order.Repository
	settings settings.UseCase
	agg      reservation.Aggregator
	catalog  order.Catalog
	lists    order.PriceLists
	indexer  order.Indexer
	logger   logger.ZapLogger
	now      func() time.Time
}

// NewOrderUseCase wires the order lifecycle. catalog, lists and indexer may be nil.
func NewOrderUseCase(repo order.Repository, st settings.UseCase, agg reservation.Aggregator, catalog order.Catalog, lists order.PriceLists, indexer order.Indexer, log logger.ZapLogger) order.UseCase {
	return &orderUseCase{
		repo:     repo,
		settings: st,
		agg:      agg,
		catalog:  catalog,
		lists:    lists,
		indexer:  indexer,
		logger:   log,
		now:      time.Now,
	}
}

type defaults struct {
	currency  string
	location  string
	priceList string
}

func (uc *orderUseCase) resolveDefaults(ctx context.Context, actorID, channelID, currency, location, priceList string) (defaults, error) {
	resolved, err := uc.settings.Effective(ctx, &settings.ResolveInput{
		UserID:    actorID,
		ChannelID: channelID,
		Explicit: settings.Values{
			settings.KeyDefaultCurrency:  strings.ToUpper(strings.TrimSpace(currency)),
			settings.KeyDefaultLocation:  strings.TrimSpace(location),
			settings.KeyDefaultPriceList: strings.TrimSpace(priceList),
		},
	})
	if err != nil {
		return defaults{}, err
	}
	return defaults{
		currency:  resolved.Get(settings.KeyDefaultCurrency),
		location:  resolved.Get(settings.KeyDefaultLocation),
		priceList: resolved.Get(settings.KeyDefaultPriceList),
	}, nil
}

func (uc *orderUseCase) CreateSellOrder(ctx context.Context, input *dto.CreateSellOrderInput) (*model.SellOrder, error) {
	if input.ActorID == "" {
		return nil, apperr.Forbidden("an identified user is required")
	}

	d, err := uc.resolveDefaults(ctx, input.ActorID, input.ChannelID, input.Currency, input.LocationID, input.PriceListCode)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	o := &model.SellOrder{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OwnerID:         input.ActorID,
		CommodityTicker: strings.ToUpper(strings.TrimSpace(input.CommodityTicker)),
		LocationID:      d.location,
		Currency:        d.currency,
		OrderType:       orDefaultType(input.OrderType),
		LimitMode:       input.LimitMode,
		LimitQuantity:   input.LimitQuantity,
	}
	if o.LimitMode == "" {
		o.LimitMode = model.LimitModeNone
	}

	code := ""
	if input.Dynamic {
		code = d.priceList
	}
	if o.Price, o.PriceListCode, err = pricingFields(input.Dynamic, code, input.Price); err != nil {
		return nil, err
	}
	if err := validateSell(o); err != nil {
		return nil, err
	}
	if err := uc.checkTicker(ctx, o.CommodityTicker); err != nil {
		return nil, err
	}
	if err := uc.checkPriceList(ctx, o.PriceListCode); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, o.Key(), "", uc.repo.IsSellOrderUnique); err != nil {
		return nil, err
	}

	if err := uc.repo.CreateSellOrder(ctx, o); err != nil {
		return nil, err
	}

	uc.logger.Info("sell order created", zap.String("order_id", o.ID), zap.String("owner_id", o.OwnerID), zap.String("ticker", o.CommodityTicker))
	uc.index(o)
	return o, nil
}

func (uc *orderUseCase) GetSellOrder(ctx context.Context, id string) (*model.SellOrder, error) {
	o, err := uc.repo.FindSellOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("sell order %s not found", id)
	}
	return o, nil
}

func (uc *orderUseCase) UpdateSellOrder(ctx context.Context, input *dto.UpdateSellOrderInput) (*model.SellOrder, error) {
	o, err := uc.GetSellOrder(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != input.ActorID {
		return nil, apperr.Forbidden("only the order owner may update it")
	}

	if input.Currency != "" {
		o.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	}
	if input.OrderType != "" {
		o.OrderType = input.OrderType
	}
	if input.LimitMode != "" {
		o.LimitMode = input.LimitMode
	}
	o.LimitQuantity = input.LimitQuantity

	code := strings.TrimSpace(input.PriceListCode)
	if o.Price, o.PriceListCode, err = pricingFields(code != "", code, input.Price); err != nil {
		return nil, err
	}
	if err := validateSell(o); err != nil {
		return nil, err
	}
	if err := uc.checkPriceList(ctx, o.PriceListCode); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, o.Key(), o.ID, uc.repo.IsSellOrderUnique); err != nil {
		return nil, err
	}

	o.UpdatedAt = uc.now()
	if err := uc.repo.UpdateSellOrder(ctx, o); err != nil {
		return nil, err
	}

	uc.index(o)
	return o, nil
}

func (uc *orderUseCase) DeleteSellOrder(ctx context.Context, id, actorID string) error {
	o, err := uc.GetSellOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.OwnerID != actorID {
		return apperr.Forbidden("only the order owner may delete it")
	}
	if err := uc.ensureNoActiveReservations(ctx, model.OrderKindSell, id); err != nil {
		return err
	}

	if err := uc.repo.DeleteSellOrder(ctx, id); err != nil {
		return err
	}

	uc.logger.Info("sell order deleted", zap.String("order_id", id), zap.String("owner_id", actorID))
	if uc.indexer != nil {
		go func() {
			if err := uc.indexer.DeleteSellOrder(context.Background(), id); err != nil {
				uc.logger.Error("failed to remove sell order from index", zap.String("order_id", id), zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *orderUseCase) CreateBuyOrder(ctx context.Context, input *dto.CreateBuyOrderInput) (*model.BuyOrder, error) {
	if input.ActorID == "" {
		return nil, apperr.Forbidden("an identified user is required")
	}

	d, err := uc.resolveDefaults(ctx, input.ActorID, input.ChannelID, input.Currency, input.LocationID, input.PriceListCode)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	o := &model.BuyOrder{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		OwnerID:         input.ActorID,
		CommodityTicker: strings.ToUpper(strings.TrimSpace(input.CommodityTicker)),
		LocationID:      d.location,
		Quantity:        input.Quantity,
		Currency:        d.currency,
		OrderType:       orDefaultType(input.OrderType),
	}

	code := ""
	if input.Dynamic {
		code = d.priceList
	}
	if o.Price, o.PriceListCode, err = pricingFields(input.Dynamic, code, input.Price); err != nil {
		return nil, err
	}
	if err := validateBuy(o); err != nil {
		return nil, err
	}
	if err := uc.checkTicker(ctx, o.CommodityTicker); err != nil {
		return nil, err
	}
	if err := uc.checkPriceList(ctx, o.PriceListCode); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, o.Key(), "", uc.repo.IsBuyOrderUnique); err != nil {
		return nil, err
	}

	if err := uc.repo.CreateBuyOrder(ctx, o); err != nil {
		return nil, err
	}

	uc.logger.Info("buy order created", zap.String("order_id", o.ID), zap.String("owner_id", o.OwnerID), zap.String("ticker", o.CommodityTicker))
	return o, nil
}

func (uc *orderUseCase) GetBuyOrder(ctx context.Context, id string) (*model.BuyOrder, error) {
	o, err := uc.repo.FindBuyOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFoundf("buy order %s not found", id)
	}
	return o, nil
}

func (uc *orderUseCase) UpdateBuyOrder(ctx context.Context, input *dto.UpdateBuyOrderInput) (*model.BuyOrder, error) {
	o, err := uc.GetBuyOrder(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != input.ActorID {
		return nil, apperr.Forbidden("only the order owner may update it")
	}

	o.Quantity = input.Quantity
	if input.Currency != "" {
		o.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	}
	if input.OrderType != "" {
		o.OrderType = input.OrderType
	}

	code := strings.TrimSpace(input.PriceListCode)
	if o.Price, o.PriceListCode, err = pricingFields(code != "", code, input.Price); err != nil {
		return nil, err
	}
	if err := validateBuy(o); err != nil {
		return nil, err
	}
	if err := uc.checkPriceList(ctx, o.PriceListCode); err != nil {
		return nil, err
	}
	if err := uc.ensureUnique(ctx, o.Key(), o.ID, uc.repo.IsBuyOrderUnique); err != nil {
		return nil, err
	}

	o.UpdatedAt = uc.now()
	if err := uc.repo.UpdateBuyOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (uc *orderUseCase) DeleteBuyOrder(ctx context.Context, id, actorID string) error {
	o, err := uc.GetBuyOrder(ctx, id)
	if err != nil {
		return err
	}
	if o.OwnerID != actorID {
		return apperr.Forbidden("only the order owner may delete it")
	}
	if err := uc.ensureNoActiveReservations(ctx, model.OrderKindBuy, id); err != nil {
		return err
	}

	if err := uc.repo.DeleteBuyOrder(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("buy order deleted", zap.String("order_id", id), zap.String("owner_id", actorID))
	return nil
}

func (uc *orderUseCase) ensureUnique(ctx context.Context, key model.OrderKey, excludeID string, check func(context.Context, model.OrderKey, string) (bool, error)) error {
	unique, err := check(ctx, key, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return apperr.Conflictf("an order for %s at %s (%s, %s) already exists", key.CommodityTicker, key.LocationID, key.OrderType, key.Currency)
	}
	return nil
}

func (uc *orderUseCase) ensureNoActiveReservations(ctx context.Context, kind model.OrderKind, id string) error {
	stats, err := uc.agg.Stats(ctx, kind, []string{id})
	if err != nil {
		return err
	}
	if n := stats[id].ActiveReservationCount; n > 0 {
		return apperr.Conflictf("order has %d active reservations", n)
	}
	return nil
}

func (uc *orderUseCase) index(o *model.SellOrder) {
	if uc.indexer == nil {
		return
	}
	snapshot := *o
	go func() {
		if err := uc.indexer.IndexSellOrder(context.Background(), &snapshot); err != nil {
			uc.logger.Error("failed to index sell order", zap.String("order_id", snapshot.ID), zap.Error(err))
		}
	}()
}

func orDefaultType(t model.OrderType) model.OrderType {
	if t == "" {
		return model.OrderTypeInternal
	}
	return t
}

// pricingFields returns the stored price and price list code. Dynamic
// orders store a zero placeholder price.
func pricingFields(dynamic bool, code string, price decimal.Decimal) (decimal.Decimal, *string, error) {
	if dynamic {
		if code == "" {
			return decimal.Zero, nil, apperr.Validation("dynamic pricing needs a price list")
		}
		return decimal.Zero, &code, nil
	}
	if !price.IsPositive() {
		return decimal.Zero, nil, apperr.Validation("price must be greater than zero")
	}
	return price, nil, nil
}

func (uc *orderUseCase) checkTicker(ctx context.Context, ticker string) error {
	if uc.catalog == nil {
		return nil
	}
	return uc.catalog.ValidateTicker(ctx, ticker)
}

func (uc *orderUseCase) checkPriceList(ctx context.Context, code *string) error {
	if uc.lists == nil || code == nil {
		return nil
	}
	return uc.lists.ValidatePriceList(ctx, *code)
}

func validateCommon(ticker, location, currency string, orderType model.OrderType) error {
	if ticker == "" {
		return apperr.Validation("commodity ticker is required")
	}
	if location == "" {
		return apperr.Validation("location is required")
	}
	if !orderType.IsValid() {
		return apperr.Validationf("invalid order type %q", orderType)
	}
	return settings.Validate(settings.KeyDefaultCurrency, currency)
}

func validateSell(o *model.SellOrder) error {
	if err := validateCommon(o.CommodityTicker, o.LocationID, o.Currency, o.OrderType); err != nil {
		return err
	}
	if !o.LimitMode.IsValid() {
		return apperr.Validationf("invalid limit mode %q", o.LimitMode)
	}
	if o.LimitMode == model.LimitModeNone {
		o.LimitQuantity = nil
		return nil
	}
	if o.LimitQuantity == nil || *o.LimitQuantity < 0 {
		return apperr.Validationf("limit mode %s needs a non-negative limit quantity", o.LimitMode)
	}
	return nil
}

func validateBuy(o *model.BuyOrder) error {
	if err := validateCommon(o.CommodityTicker, o.LocationID, o.Currency, o.OrderType); err != nil {
		return err
	}
	if o.Quantity <= 0 {
		return apperr.Validation("quantity must be greater than zero")
	}
	return nil
}
