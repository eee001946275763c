package market

import (
	"sort"

	"github.com/fekuna/prun-market-service/internal/availability"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/pricing"
)

type SellListing struct {
	Order        model.SellOrder     `json:"order"`
	Availability availability.Result `json:"availability"`
	Price        *pricing.Resolution `json:"price"` // Nil when unresolved
}

type BuyListing struct {
	Order     model.BuyOrder         `json:"order"`
	Remaining availability.BuyResult `json:"remaining"`
	Price     *pricing.Resolution    `json:"price"`
}

// SortSellListings orders cheapest first. Unresolved prices go last; ties
// prefer the listing with more remaining.
func SortSellListings(items []SellListing) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i].Price, items[j].Price, false, items[i].Availability.RemainingQuantity, items[j].Availability.RemainingQuantity)
	})
}

// SortBuyListings orders highest bid first, with the same tie rules as sells.
func SortBuyListings(items []BuyListing) {
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i].Price, items[j].Price, true, items[i].Remaining.RemainingQuantity, items[j].Remaining.RemainingQuantity)
	})
}

func less(a, b *pricing.Resolution, descending bool, remainingA, remainingB int) bool {
	switch {
	case a == nil && b == nil:
		return remainingA > remainingB
	case a == nil:
		return false
	case b == nil:
		return true
	}
	if c := a.Price.Cmp(b.Price); c != 0 {
		if descending {
			return c > 0
		}
		return c < 0
	}
	return remainingA > remainingB
}

func Paginate[T any](items []T, page, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
