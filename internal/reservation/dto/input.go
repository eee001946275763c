package dto

import (
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
)

type CreateReservationInput struct {
	ActorID     string
	ChannelID   string // Used for settings resolution only
	SellOrderID string // Exactly one of SellOrderID / BuyOrderID
	BuyOrderID  string
	Quantity    int
	Notes       string
	ExpiresAt   *time.Time
}

type UpdateStatusInput struct {
	ReservationID string
	ActorID       string
	Status        model.ReservationStatus
	Notes         *string // Nil keeps current notes
}

type ReservationFilters struct {
	UserID   string // Matches owner or counterparty
	Statuses []model.ReservationStatus // Compared against the status after lazy expiry
	Page     int
	PageSize int
	Now      time.Time // Set by the use case
}
