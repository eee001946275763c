package reservation

import (
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
)

// Stats is the per-order reservation summary. Every requested order gets
// one, zero-filled when nothing references it.
type Stats struct {
	ActiveReservationCount int `json:"active_reservation_count"`
	ReservedQuantity       int `json:"reserved_quantity"`
	FulfilledQuantity      int `json:"fulfilled_quantity"`
}

// Aggregate folds reservation rows into per-order Stats for the given side.
// Pending and confirmed rows past their expiry hold nothing; fulfilled rows
// count regardless of expiry.
func Aggregate(kind model.OrderKind, orderIDs []string, rows []model.Reservation, now time.Time) map[string]Stats {
	out := make(map[string]Stats, len(orderIDs))
	for _, id := range orderIDs {
		out[id] = Stats{}
	}

	for i := range rows {
		r := &rows[i]
		if r.OrderKind() != kind {
			continue
		}
		id := r.OrderID()
		s, ok := out[id]
		if !ok {
			continue
		}

		switch r.EffectiveStatus(now) {
		case model.ReservationPending, model.ReservationConfirmed:
			s.ActiveReservationCount++
			s.ReservedQuantity += r.Quantity
		case model.ReservationFulfilled:
			s.FulfilledQuantity += r.Quantity
		default:
			continue
		}
		out[id] = s
	}
	return out
}
