package reservation

import (
	"context"
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
)

const (
	EventReservationCreated       = "ReservationCreated"
	EventReservationStatusChanged = "ReservationStatusChanged"
)

type Event struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   EventPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type EventPayload struct {
	ReservationID  string                  `json:"reservation_id"`
	OrderKind      model.OrderKind         `json:"order_kind"`
	OrderID        string                  `json:"order_id"`
	OwnerID        string                  `json:"owner_id"`
	CounterpartyID string                  `json:"counterparty_id"`
	ActorID        string                  `json:"actor_id"`
	Quantity       int                     `json:"quantity"`
	Status         model.ReservationStatus `json:"status"`
	PreviousStatus model.ReservationStatus `json:"previous_status,omitempty"`
}

// EventPublisher delivers reservation lifecycle events to chat and web
// notification consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}
