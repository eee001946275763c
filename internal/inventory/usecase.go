package inventory

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/inventory/dto"
	"github.com/fekuna/prun-market-service/internal/model"
)

type UseCase interface {
	GetSnapshot(ctx context.Context, ownerID, commodityTicker, locationID string) (*model.InventorySnapshot, error)
	ApplySync(ctx context.Context, input *dto.SyncInventoryInput) (int, error)
}
