package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const snapshotColumns = `owner_id, commodity_ticker, location_id, quantity, last_synced_at`

func (r *PGRepository) GetSnapshot(ctx context.Context, ownerID, commodityTicker, locationID string) (*model.InventorySnapshot, error) {
	var snap model.InventorySnapshot
	query := `SELECT ` + snapshotColumns + ` FROM inventory_snapshots
        WHERE owner_id = $1 AND commodity_ticker = $2 AND location_id = $3`

	err := r.DB.GetContext(ctx, &snap, query, ownerID, commodityTicker, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &snap, nil
}

func (r *PGRepository) BatchGetSnapshots(ctx context.Context, keys []model.InventoryKey) ([]model.InventorySnapshot, error) {
	keys = uniqueKeys(keys)
	if len(keys) == 0 {
		return []model.InventorySnapshot{}, nil
	}

	// Row-value IN list: one round trip regardless of how many orders are listed.
	tuples := make([]string, len(keys))
	args := make([]interface{}, 0, len(keys)*3)
	for i, k := range keys {
		tuples[i] = fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, k.OwnerID, k.CommodityTicker, k.LocationID)
	}

	query := `SELECT ` + snapshotColumns + ` FROM inventory_snapshots
        WHERE (owner_id, commodity_ticker, location_id) IN (` + strings.Join(tuples, ", ") + `)`

	var items []model.InventorySnapshot
	err := r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) UpsertSnapshots(ctx context.Context, snapshots []model.InventorySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Out-of-order sync deliveries must not roll a snapshot back.
	query := `
        INSERT INTO inventory_snapshots (owner_id, commodity_ticker, location_id, quantity, last_synced_at)
        VALUES (:owner_id, :commodity_ticker, :location_id, :quantity, :last_synced_at)
        ON CONFLICT (owner_id, commodity_ticker, location_id)
        DO UPDATE SET
            quantity = EXCLUDED.quantity,
            last_synced_at = EXCLUDED.last_synced_at
        WHERE inventory_snapshots.last_synced_at <= EXCLUDED.last_synced_at
    `
	for i := range snapshots {
		if _, err := tx.NamedExecContext(ctx, query, &snapshots[i]); err != nil {
			return fmt.Errorf("failed to upsert snapshot %s/%s: %w",
				snapshots[i].CommodityTicker, snapshots[i].LocationID, err)
		}
	}

	return tx.Commit()
}

func uniqueKeys(keys []model.InventoryKey) []model.InventoryKey {
	seen := make(map[model.InventoryKey]struct{}, len(keys))
	out := make([]model.InventoryKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
