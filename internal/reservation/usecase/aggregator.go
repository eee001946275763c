package usecase

import (
	"context"
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation"
)

type aggregator struct {
	repo reservation.Repository
	now  func() time.Time
}

// NewAggregator returns an Aggregator that loads all holding reservations
// for the requested orders with one repository call.
func NewAggregator(repo reservation.Repository) reservation.Aggregator {
	return &aggregator{repo: repo, now: time.Now}
}

func (a *aggregator) Stats(ctx context.Context, kind model.OrderKind, orderIDs []string) (map[string]reservation.Stats, error) {
	if len(orderIDs) == 0 {
		return map[string]reservation.Stats{}, nil
	}
	rows, err := a.repo.ListHoldingByOrderIDs(ctx, kind, orderIDs)
	if err != nil {
		return nil, err
	}
	return reservation.Aggregate(kind, orderIDs, rows, a.now()), nil
}
