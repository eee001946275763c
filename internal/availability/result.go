package availability

import (
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation"
)

// Result is the tradeable position of one sell order.
type Result struct {
	FIOQuantity            int        `json:"fio_quantity"` // raw synced inventory
	AvailableQuantity      int        `json:"available_quantity"`
	ActiveReservationCount int        `json:"active_reservation_count"`
	ReservedQuantity       int        `json:"reserved_quantity"`
	FulfilledQuantity      int        `json:"fulfilled_quantity"`
	RemainingQuantity      int        `json:"remaining_quantity"`
	LastSyncedAt           *time.Time `json:"last_synced_at"`
}

// BuyResult is the outstanding demand of one buy order.
type BuyResult struct {
	ActiveReservationCount int `json:"active_reservation_count"`
	ReservedQuantity       int `json:"reserved_quantity"`
	FulfilledQuantity      int `json:"fulfilled_quantity"`
	RemainingQuantity      int `json:"remaining_quantity"`
}

// SellResult combines a snapshot (nil when never synced) with reservation stats.
func SellResult(order *model.SellOrder, snapshot *model.InventorySnapshot, stats reservation.Stats) Result {
	res := Result{
		ActiveReservationCount: stats.ActiveReservationCount,
		ReservedQuantity:       stats.ReservedQuantity,
		FulfilledQuantity:      stats.FulfilledQuantity,
	}
	if snapshot != nil {
		res.FIOQuantity = snapshot.Quantity
		syncedAt := snapshot.LastSyncedAt
		res.LastSyncedAt = &syncedAt
	}
	res.AvailableQuantity = NominalAvailable(order.LimitMode, order.LimitQuantity, res.FIOQuantity)
	res.RemainingQuantity = clamp(res.AvailableQuantity - stats.ReservedQuantity - stats.FulfilledQuantity)
	return res
}

func BuyRemaining(order *model.BuyOrder, stats reservation.Stats) BuyResult {
	return BuyResult{
		ActiveReservationCount: stats.ActiveReservationCount,
		ReservedQuantity:       stats.ReservedQuantity,
		FulfilledQuantity:      stats.FulfilledQuantity,
		RemainingQuantity:      clamp(order.Quantity - stats.ReservedQuantity - stats.FulfilledQuantity),
	}
}
