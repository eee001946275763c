package model

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationFulfilled,
		ReservationRejected, ReservationCancelled, ReservationExpired:
		return true
	}
	return false
}

// IsActive reports whether the status holds quantity against its order.
func (s ReservationStatus) IsActive() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

// IsTerminal reports whether no transition leaves the status.
// Cancelled is not terminal: the counterparty may reopen it.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationFulfilled || s == ReservationRejected || s == ReservationExpired
}

func (s ReservationStatus) String() string {
	return string(s)
}

// Reservation links a counterparty to exactly one sell or buy order.
type Reservation struct {
	BaseModel
	SellOrderID    *string           `db:"sell_order_id" json:"sell_order_id"`
	BuyOrderID     *string           `db:"buy_order_id" json:"buy_order_id"`
	OwnerID        string            `db:"owner_id" json:"owner_id"`               // order owner
	CounterpartyID string            `db:"counterparty_id" json:"counterparty_id"` // reserving user
	Quantity       int               `db:"quantity" json:"quantity"`
	Status         ReservationStatus `db:"status" json:"status"`
	Notes          string            `db:"notes" json:"notes"`
	ExpiresAt      *time.Time        `db:"expires_at" json:"expires_at"`
}

func (r *Reservation) OrderKind() OrderKind {
	if r.SellOrderID != nil {
		return OrderKindSell
	}
	return OrderKindBuy
}

func (r *Reservation) OrderID() string {
	if r.SellOrderID != nil {
		return *r.SellOrderID
	}
	if r.BuyOrderID != nil {
		return *r.BuyOrderID
	}
	return ""
}

// IsExpiredAt reports whether an active reservation has outlived its expiry.
func (r *Reservation) IsExpiredAt(now time.Time) bool {
	return r.Status.IsActive() && r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// EffectiveStatus applies lazy expiry on top of the stored status.
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if r.IsExpiredAt(now) {
		return ReservationExpired
	}
	return r.Status
}
