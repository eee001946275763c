package availability

import "github.com/fekuna/prun-market-service/internal/model"

// NominalAvailable applies a sell order's limit policy to raw inventory.
//
//	none     -> raw
//	max_sell -> min(raw, limit)
//	reserve  -> max(0, raw - limit)
//
// A nil limit counts as 0. The result is never negative.
func NominalAvailable(mode model.LimitMode, limitQuantity *int, raw int) int {
	if raw < 0 {
		raw = 0
	}
	limit := 0
	if limitQuantity != nil && *limitQuantity > 0 {
		limit = *limitQuantity
	}

	switch mode {
	case model.LimitModeMaxSell:
		if limit < raw {
			return limit
		}
		return raw
	case model.LimitModeReserve:
		return clamp(raw - limit)
	default:
		return raw
	}
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
