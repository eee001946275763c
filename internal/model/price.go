package model

import "github.com/shopspring/decimal"

type PriceList struct {
	Code              string  `db:"code" json:"code"`
	Name              string  `db:"name" json:"name"`
	Currency          string  `db:"currency" json:"currency"`
	DefaultLocationID *string `db:"default_location_id" json:"default_location_id"` // Fallback location
}

type Price struct {
	PriceListCode   string          `db:"price_list_code" json:"price_list_code"`
	CommodityTicker string          `db:"commodity_ticker" json:"commodity_ticker"`
	LocationID      string          `db:"location_id" json:"location_id"`
	Price           decimal.Decimal `db:"price" json:"price"`
}

// PriceTarget is the pricing-relevant projection of a sell or buy order.
type PriceTarget struct {
	OrderID         string
	CommodityTicker string
	LocationID      string
	Price           decimal.Decimal
	Currency        string
	PriceListCode   *string
}

func (t PriceTarget) IsDynamic() bool {
	return t.PriceListCode != nil && *t.PriceListCode != ""
}
