package availability

import (
	"testing"
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation"
	"github.com/stretchr/testify/assert"
)

func ptr(n int) *int { return &n }

func TestNominalAvailable(t *testing.T) {
	tests := []struct {
		name  string
		mode  model.LimitMode
		limit *int
		raw   int
		want  int
	}{
		{"none ignores limit", model.LimitModeNone, ptr(10), 500, 500},
		{"none nil limit", model.LimitModeNone, nil, 500, 500},
		{"max_sell inventory below cap", model.LimitModeMaxSell, ptr(2000), 500, 500},
		{"max_sell caps inventory", model.LimitModeMaxSell, ptr(500), 2000, 500},
		{"max_sell nil limit", model.LimitModeMaxSell, nil, 2000, 0},
		{"reserve holds back", model.LimitModeReserve, ptr(500), 2000, 1500},
		{"reserve never negative", model.LimitModeReserve, ptr(1500), 1000, 0},
		{"reserve nil limit", model.LimitModeReserve, nil, 1000, 1000},
		{"negative raw", model.LimitModeNone, nil, -3, 0},
		{"unknown mode behaves as none", model.LimitMode("weird"), ptr(1), 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NominalAvailable(tt.mode, tt.limit, tt.raw))
		})
	}
}

func TestSellResult(t *testing.T) {
	synced := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	order := &model.SellOrder{LimitMode: model.LimitModeReserve, LimitQuantity: ptr(500)}
	snap := &model.InventorySnapshot{Quantity: 2000, LastSyncedAt: synced}

	res := SellResult(order, snap, reservation.Stats{ActiveReservationCount: 1, ReservedQuantity: 300})
	assert.Equal(t, 2000, res.FIOQuantity)
	assert.Equal(t, 1500, res.AvailableQuantity)
	assert.Equal(t, 1200, res.RemainingQuantity)
	assert.Equal(t, &synced, res.LastSyncedAt)

	res = SellResult(order, snap, reservation.Stats{ReservedQuantity: 1400, FulfilledQuantity: 900})
	assert.Equal(t, 0, res.RemainingQuantity)
}

func TestSellResult_noSnapshot(t *testing.T) {
	order := &model.SellOrder{LimitMode: model.LimitModeNone}

	res := SellResult(order, nil, reservation.Stats{})
	assert.Equal(t, 0, res.FIOQuantity)
	assert.Equal(t, 0, res.AvailableQuantity)
	assert.Equal(t, 0, res.RemainingQuantity)
	assert.Nil(t, res.LastSyncedAt)
}

func TestBuyRemaining(t *testing.T) {
	order := &model.BuyOrder{Quantity: 100}

	res := BuyRemaining(order, reservation.Stats{ActiveReservationCount: 1, ReservedQuantity: 20, FulfilledQuantity: 40})
	assert.Equal(t, 40, res.RemainingQuantity)

	res = BuyRemaining(order, reservation.Stats{ReservedQuantity: 90, FulfilledQuantity: 40})
	assert.Equal(t, 0, res.RemainingQuantity)
}
