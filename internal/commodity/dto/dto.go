package dto

import "github.com/shopspring/decimal"

type CommodityFilters struct {
	Category string
	Query    string // Matches ticker or name
	Page     int
	PageSize int
}

type CommodityInput struct {
	Ticker   string
	Name     string
	Category string
	Weight   decimal.Decimal
	Volume   decimal.Decimal
}
