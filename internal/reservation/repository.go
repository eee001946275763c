package reservation

import (
	"context"
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation/dto"
)

type Repository interface {
	Create(ctx context.Context, r *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	ListByParticipant(ctx context.Context, filters *dto.ReservationFilters) ([]model.Reservation, int, error)

	// ListHoldingByOrderIDs returns pending, confirmed and fulfilled rows for
	// the given orders in a single query.
	ListHoldingByOrderIDs(ctx context.Context, kind model.OrderKind, orderIDs []string) ([]model.Reservation, error)

	// UpdateStatus applies a compare-and-swap on status. It reports false when
	// the row no longer has status from.
	UpdateStatus(ctx context.Context, id string, from, to model.ReservationStatus, notes *string, now time.Time) (bool, error)

	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}
