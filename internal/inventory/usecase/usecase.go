package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/inventory"
	"github.com/fekuna/prun-market-service/internal/inventory/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	logger logger.ZapLogger
	now    func() time.Time
}

func NewInventoryUseCase(repo inventory.Repository, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		logger: log,
		now:    time.Now,
	}
}

func (uc *inventoryUseCase) GetSnapshot(ctx context.Context, ownerID, commodityTicker, locationID string) (*model.InventorySnapshot, error) {
	snap, err := uc.repo.GetSnapshot(ctx, ownerID, commodityTicker, locationID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &model.InventorySnapshot{
			OwnerID:         ownerID,
			CommodityTicker: commodityTicker,
			LocationID:      locationID,
			Quantity:        0,
		}, nil
	}
	return snap, nil
}

// ApplySync stores the quantities reported by one sync run and returns how
// many snapshots were written.
func (uc *inventoryUseCase) ApplySync(ctx context.Context, input *dto.SyncInventoryInput) (int, error) {
	if input.OwnerID == "" {
		return 0, apperr.Validation("owner_id is required")
	}

	syncedAt := input.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = uc.now()
	}

	snaps := make([]model.InventorySnapshot, 0, len(input.Items))
	for _, item := range input.Items {
		ticker := strings.ToUpper(strings.TrimSpace(item.CommodityTicker))
		if ticker == "" || item.LocationID == "" {
			uc.logger.Warn("skipping inventory item without ticker or location",
				zap.String("owner_id", input.OwnerID))
			continue
		}
		qty := item.Quantity
		if qty < 0 {
			qty = 0
		}
		snaps = append(snaps, model.InventorySnapshot{
			OwnerID:         input.OwnerID,
			CommodityTicker: ticker,
			LocationID:      item.LocationID,
			Quantity:        qty,
			LastSyncedAt:    syncedAt,
		})
	}

	if err := uc.repo.UpsertSnapshots(ctx, snaps); err != nil {
		return 0, err
	}

	uc.logger.Info("inventory synced",
		zap.String("owner_id", input.OwnerID),
		zap.Int("items", len(snaps)),
		zap.Time("synced_at", syncedAt),
	)
	return len(snaps), nil
}
