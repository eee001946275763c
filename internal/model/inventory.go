package model

import "time"

// InventorySnapshot is the externally synced quantity a user holds of a
// commodity at a location.
type InventorySnapshot struct {
	OwnerID         string    `db:"owner_id" json:"owner_id"`
	CommodityTicker string    `db:"commodity_ticker" json:"commodity_ticker"`
	LocationID      string    `db:"location_id" json:"location_id"`
	Quantity        int       `db:"quantity" json:"quantity"`
	LastSyncedAt    time.Time `db:"last_synced_at" json:"last_synced_at"`
}

func (s *InventorySnapshot) Key() InventoryKey {
	return InventoryKey{OwnerID: s.OwnerID, CommodityTicker: s.CommodityTicker, LocationID: s.LocationID}
}

type InventoryKey struct {
	OwnerID         string
	CommodityTicker string
	LocationID      string
}
