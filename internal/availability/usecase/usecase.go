package usecase

import (
	"context"
	"fmt"

	"github.com/fekuna/prun-market-service/internal/availability"
	"github.com/fekuna/prun-market-service/internal/inventory"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
)

type availabilityUseCase struct {
	inventory  inventory.Repository
	aggregator reservation.Aggregator
	logger     logger.ZapLogger
}

func NewAvailabilityUseCase(inv inventory.Repository, agg reservation.Aggregator, log logger.ZapLogger) availability.UseCase {
	return &availabilityUseCase{
		inventory:  inv,
		aggregator: agg,
		logger:     log,
	}
}

func (uc *availabilityUseCase) ComputeSellAvailability(ctx context.Context, orders []model.SellOrder) (map[string]availability.Result, error) {
	out := make(map[string]availability.Result, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	keys := make([]model.InventoryKey, len(orders))
	ids := make([]string, len(orders))
	for i := range orders {
		keys[i] = orders[i].InventoryKey()
		ids[i] = orders[i].ID
	}

	snaps, err := uc.inventory.BatchGetSnapshots(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load inventory snapshots: %w", err)
	}
	byKey := make(map[model.InventoryKey]*model.InventorySnapshot, len(snaps))
	for i := range snaps {
		byKey[snaps[i].Key()] = &snaps[i]
	}

	stats, err := uc.aggregator.Stats(ctx, model.OrderKindSell, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate sell reservations: %w", err)
	}

	for i := range orders {
		o := &orders[i]
		res := availability.SellResult(o, byKey[o.InventoryKey()], stats[o.ID])
		if res.ReservedQuantity+res.FulfilledQuantity > res.AvailableQuantity {
			uc.logger.Debug("sell order over-reserved",
				zap.String("order_id", o.ID),
				zap.Int("available", res.AvailableQuantity),
				zap.Int("reserved", res.ReservedQuantity),
				zap.Int("fulfilled", res.FulfilledQuantity),
			)
		}
		out[o.ID] = res
	}
	return out, nil
}

func (uc *availabilityUseCase) GetSellAvailability(ctx context.Context, order *model.SellOrder) (availability.Result, error) {
	results, err := uc.ComputeSellAvailability(ctx, []model.SellOrder{*order})
	if err != nil {
		return availability.Result{}, err
	}
	return results[order.ID], nil
}

func (uc *availabilityUseCase) ComputeBuyRemaining(ctx context.Context, orders []model.BuyOrder) (map[string]availability.BuyResult, error) {
	out := make(map[string]availability.BuyResult, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}

	stats, err := uc.aggregator.Stats(ctx, model.OrderKindBuy, ids)
	if err != nil {
		return nil, fmt.Errorf("aggregate buy reservations: %w", err)
	}

	for i := range orders {
		out[orders[i].ID] = availability.BuyRemaining(&orders[i], stats[orders[i].ID])
	}
	return out, nil
}

func (uc *availabilityUseCase) GetBuyRemaining(ctx context.Context, order *model.BuyOrder) (availability.BuyResult, error) {
	results, err := uc.ComputeBuyRemaining(ctx, []model.BuyOrder{*order})
	if err != nil {
		return availability.BuyResult{}, err
	}
	return results[order.ID], nil
}
