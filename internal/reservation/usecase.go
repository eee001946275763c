package reservation

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation/dto"
)

type UseCase interface {
	CreateReservation(ctx context.Context, input *dto.CreateReservationInput) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Reservation, error)
	GetReservation(ctx context.Context, id, actorID string) (*model.Reservation, error)
	ListForUser(ctx context.Context, filters *dto.ReservationFilters) ([]model.Reservation, int, error)
	ExpireStale(ctx context.Context) (int64, error)
}

// Aggregator resolves reservation Stats for many orders at once.
type Aggregator interface {
	Stats(ctx context.Context, kind model.OrderKind, orderIDs []string) (map[string]Stats, error)
}
