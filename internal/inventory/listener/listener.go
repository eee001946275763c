package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/prun-market-service/internal/inventory"
	"github.com/fekuna/prun-market-service/internal/inventory/dto"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const eventTypeInventorySynced = "InventorySynced"

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// InventoryListener applies inventory sync events published by the game
// data sync process.
type InventoryListener struct {
	consumer MessageReader
	uc       inventory.UseCase
	logger   logger.ZapLogger
	backoff  time.Duration
}

func NewInventoryListener(consumer MessageReader, uc inventory.UseCase, logger logger.ZapLogger) *InventoryListener {
	return &InventoryListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
		backoff:  time.Second,
	}
}

func (l *InventoryListener) Start(ctx context.Context) {
	l.logger.Info("Starting Inventory Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Inventory Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(l.backoff)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type InventorySyncedEvent struct {
	EventID   string               `json:"event_id"`
	EventType string               `json:"event_type"`
	Payload   InventorySyncPayload `json:"payload"`
	Timestamp time.Time            `json:"timestamp"`
}

type InventorySyncPayload struct {
	OwnerID  string              `json:"owner_id"`
	SyncedAt time.Time           `json:"synced_at"`
	Items    []InventoryItemData `json:"items"`
}

type InventoryItemData struct {
	CommodityTicker string `json:"commodity_ticker"`
	LocationID      string `json:"location_id"`
	Quantity        int    `json:"quantity"`
}

func (l *InventoryListener) processMessage(ctx context.Context, value []byte) {
	var event InventorySyncedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.EventType != eventTypeInventorySynced {
		return
	}

	syncedAt := event.Payload.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = event.Timestamp
	}

	input := &dto.SyncInventoryInput{
		OwnerID:  event.Payload.OwnerID,
		SyncedAt: syncedAt,
		Items:    make([]dto.SyncItem, 0, len(event.Payload.Items)),
	}
	for _, item := range event.Payload.Items {
		input.Items = append(input.Items, dto.SyncItem{
			CommodityTicker: item.CommodityTicker,
			LocationID:      item.LocationID,
			Quantity:        item.Quantity,
		})
	}

	if _, err := l.uc.ApplySync(ctx, input); err != nil {
		l.logger.Error("Failed to apply inventory sync",
			zap.String("event_id", event.EventID),
			zap.String("owner_id", event.Payload.OwnerID),
			zap.Error(err),
		)
	}
}
