package inventory

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
)

type Repository interface {
	// Snapshots are read-only to the market core; a missing row means zero stock.
	GetSnapshot(ctx context.Context, ownerID, commodityTicker, locationID string) (*model.InventorySnapshot, error)
	BatchGetSnapshots(ctx context.Context, keys []model.InventoryKey) ([]model.InventorySnapshot, error)

	// Written only by the sync listener
	UpsertSnapshots(ctx context.Context, snapshots []model.InventorySnapshot) error
}
