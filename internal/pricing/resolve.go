package pricing

import (
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/shopspring/decimal"
)

// Resolution is the effective unit price of an order.
type Resolution struct {
	Price            decimal.Decimal `json:"price"`
	Currency         string          `json:"currency"`
	IsFallback       bool            `json:"is_fallback"`
	SourceLocationID string          `json:"source_location_id"`
}

type priceKey struct {
	code     string
	ticker   string
	location string
}

// PriceIndex is an in-memory lookup over price rows.
type PriceIndex map[priceKey]decimal.Decimal

func NewPriceIndex(prices []model.Price) PriceIndex {
	idx := make(PriceIndex, len(prices))
	for _, p := range prices {
		idx[priceKey{p.PriceListCode, p.CommodityTicker, p.LocationID}] = p.Price
	}
	return idx
}

func (idx PriceIndex) Lookup(code, ticker, location string) (decimal.Decimal, bool) {
	p, ok := idx[priceKey{code, ticker, location}]
	return p, ok
}

// Resolve returns the effective price of target, or nil when a dynamic
// price cannot be found at the order's location nor at the list's default
// location. list is the price list named by target and may be nil.
func Resolve(target model.PriceTarget, list *model.PriceList, idx PriceIndex) *Resolution {
	if !target.IsDynamic() {
		return &Resolution{
			Price:            target.Price,
			Currency:         target.Currency,
			SourceLocationID: target.LocationID,
		}
	}
	if list == nil {
		return nil
	}

	code := *target.PriceListCode
	currency := list.Currency
	if currency == "" {
		currency = target.Currency
	}

	if p, ok := idx.Lookup(code, target.CommodityTicker, target.LocationID); ok {
		return &Resolution{Price: p, Currency: currency, SourceLocationID: target.LocationID}
	}

	if list.DefaultLocationID == nil || *list.DefaultLocationID == "" || *list.DefaultLocationID == target.LocationID {
		return nil
	}
	fallback := *list.DefaultLocationID
	if p, ok := idx.Lookup(code, target.CommodityTicker, fallback); ok {
		return &Resolution{Price: p, Currency: currency, IsFallback: true, SourceLocationID: fallback}
	}
	return nil
}

// DisplayPrice collapses a resolution into a price/currency pair.
type DisplayPrice struct {
	Price    decimal.NullDecimal `json:"price"`
	Currency string              `json:"currency"`
}

const unresolvedPrice = "??"

func NewDisplayPrice(target model.PriceTarget, r *Resolution) DisplayPrice {
	if r == nil {
		return DisplayPrice{Currency: target.Currency}
	}
	return DisplayPrice{
		Price:    decimal.NullDecimal{Decimal: r.Price, Valid: true},
		Currency: r.Currency,
	}
}

func (d DisplayPrice) String() string {
	if !d.Price.Valid {
		return unresolvedPrice
	}
	return d.Price.Decimal.StringFixed(2) + " " + d.Currency
}
