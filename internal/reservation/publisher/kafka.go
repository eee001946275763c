package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fekuna/prun-market-service/internal/reservation"
)

type MessageWriter interface {
	Send(ctx context.Context, key, value []byte) error
}

// KafkaPublisher writes reservation events keyed by reservation id, so every
// event for one reservation lands on the same partition in order.
type KafkaPublisher struct {
	producer MessageWriter
}

func NewKafkaPublisher(producer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *reservation.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal reservation event: %w", err)
	}
	return p.producer.Send(ctx, []byte(event.Payload.ReservationID), value)
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, *reservation.Event) error { return nil }
