package model

import "github.com/shopspring/decimal"

type OrderType string

const (
	OrderTypeInternal OrderType = "internal"
	OrderTypePartner  OrderType = "partner"
)

func (t OrderType) IsValid() bool {
	return t == OrderTypeInternal || t == OrderTypePartner
}

// LimitMode governs how much of live inventory a sell order may draw upon.
type LimitMode string

const (
	LimitModeNone    LimitMode = "none"
	LimitModeMaxSell LimitMode = "max_sell"
	LimitModeReserve LimitMode = "reserve"
)

func (m LimitMode) IsValid() bool {
	switch m {
	case LimitModeNone, LimitModeMaxSell, LimitModeReserve:
		return true
	}
	return false
}

// OrderKind tells which side of the market a reservation targets.
type OrderKind string

const (
	OrderKindSell OrderKind = "sell"
	OrderKindBuy  OrderKind = "buy"
)

type SellOrder struct {
	BaseModel
	OwnerID         string          `db:"owner_id" json:"owner_id"`
	CommodityTicker string          `db:"commodity_ticker" json:"commodity_ticker"`
	LocationID      string          `db:"location_id" json:"location_id"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Currency        string          `db:"currency" json:"currency"`
	PriceListCode   *string         `db:"price_list_code" json:"price_list_code"` // Nil for fixed pricing
	OrderType       OrderType       `db:"order_type" json:"order_type"`
	LimitMode       LimitMode       `db:"limit_mode" json:"limit_mode"`
	LimitQuantity   *int            `db:"limit_quantity" json:"limit_quantity"`
}

func (o *SellOrder) IsDynamic() bool {
	return o.PriceListCode != nil && *o.PriceListCode != ""
}

func (o *SellOrder) PriceTarget() PriceTarget {
	return PriceTarget{
		OrderID:         o.ID,
		CommodityTicker: o.CommodityTicker,
		LocationID:      o.LocationID,
		Price:           o.Price,
		Currency:        o.Currency,
		PriceListCode:   o.PriceListCode,
	}
}

func (o *SellOrder) Key() OrderKey {
	return OrderKey{OwnerID: o.OwnerID, CommodityTicker: o.CommodityTicker, LocationID: o.LocationID, OrderType: o.OrderType, Currency: o.Currency}
}

func (o *SellOrder) InventoryKey() InventoryKey {
	return InventoryKey{OwnerID: o.OwnerID, CommodityTicker: o.CommodityTicker, LocationID: o.LocationID}
}

type BuyOrder struct {
	BaseModel
	OwnerID         string          `db:"owner_id" json:"owner_id"`
	CommodityTicker string          `db:"commodity_ticker" json:"commodity_ticker"`
	LocationID      string          `db:"location_id" json:"location_id"`
	Quantity        int             `db:"quantity" json:"quantity"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Currency        string          `db:"currency" json:"currency"`
	PriceListCode   *string         `db:"price_list_code" json:"price_list_code"`
	OrderType       OrderType       `db:"order_type" json:"order_type"`
}

func (o *BuyOrder) IsDynamic() bool {
	return o.PriceListCode != nil && *o.PriceListCode != ""
}

func (o *BuyOrder) PriceTarget() PriceTarget {
	return PriceTarget{
		OrderID:         o.ID,
		CommodityTicker: o.CommodityTicker,
		LocationID:      o.LocationID,
		Price:           o.Price,
		Currency:        o.Currency,
		PriceListCode:   o.PriceListCode,
	}
}

func (o *BuyOrder) Key() OrderKey {
	return OrderKey{OwnerID: o.OwnerID, CommodityTicker: o.CommodityTicker, LocationID: o.LocationID, OrderType: o.OrderType, Currency: o.Currency}
}

// OrderKey is the uniqueness tuple shared by sell and buy orders.
type OrderKey struct {
	OwnerID         string
	CommodityTicker string
	LocationID      string
	OrderType       OrderType
	Currency        string
}
