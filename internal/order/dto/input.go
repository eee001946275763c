package dto

import (
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/shopspring/decimal"
)

type CreateSellOrderInput struct {
	ActorID         string
	ChannelID       string // Used for settings resolution only
	CommodityTicker string
	LocationID      string // Empty uses the default_location setting
	Price           decimal.Decimal
	Currency        string // Empty uses the default_currency setting
	Dynamic         bool   // Price from a price list instead of Price
	PriceListCode   string // Empty with Dynamic uses the default_price_list setting
	OrderType       model.OrderType
	LimitMode       model.LimitMode
	LimitQuantity   *int
}

type UpdateSellOrderInput struct {
	ID            string
	ActorID       string
	Price         decimal.Decimal
	Currency      string
	PriceListCode string // Empty switches to fixed pricing
	OrderType     model.OrderType
	LimitMode     model.LimitMode
	LimitQuantity *int
}

type CreateBuyOrderInput struct {
	ActorID         string
	ChannelID       string
	CommodityTicker string
	LocationID      string
	Quantity        int
	Price           decimal.Decimal
	Currency        string
	Dynamic         bool
	PriceListCode   string
	OrderType       model.OrderType
}

type UpdateBuyOrderInput struct {
	ID            string
	ActorID       string
	Quantity      int
	Price         decimal.Decimal
	Currency      string
	PriceListCode string
	OrderType     model.OrderType
}

type OrderFilters struct {
	OwnerID         string
	CommodityTicker string
	LocationID      string
	OrderType       model.OrderType // Empty matches both
	Page            int
	PageSize        int
}
