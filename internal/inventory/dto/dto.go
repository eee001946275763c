package dto

import "time"

type SyncInventoryInput struct {
	OwnerID  string
	SyncedAt time.Time
	Items    []SyncItem
}

type SyncItem struct {
	CommodityTicker string
	LocationID      string
	Quantity        int
}
