package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation/dto"
)

type ReservationStore struct {
	mu    sync.Mutex
	items map[string]model.Reservation

	// HoldingQueries counts ListHoldingByOrderIDs calls.
	HoldingQueries int
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{items: map[string]model.Reservation{}}
}

// Put stores r as-is, bypassing lifecycle rules.
func (s *ReservationStore) Put(r model.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = r
}

func (s *ReservationStore) Create(_ context.Context, r *model.Reservation) error {
	s.Put(*r)
	return nil
}

func (s *ReservationStore) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *ReservationStore) ListByParticipant(_ context.Context, f *dto.ReservationFilters) ([]model.Reservation, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := map[model.ReservationStatus]bool{}
	for _, st := range f.Statuses {
		statuses[st] = true
	}

	var out []model.Reservation
	for _, r := range s.items {
		if r.OwnerID != f.UserID && r.CounterpartyID != f.UserID {
			continue
		}
		if len(statuses) > 0 && !statuses[r.EffectiveStatus(f.Now)] {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	total := len(out)

	if f.PageSize > 0 {
		p := f.Page
		if p < 1 {
			p = 1
		}
		start := (p - 1) * f.PageSize
		if start >= len(out) {
			return nil, total, nil
		}
		end := start + f.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (s *ReservationStore) ListHoldingByOrderIDs(_ context.Context, kind model.OrderKind, orderIDs []string) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HoldingQueries++

	want := map[string]bool{}
	for _, id := range orderIDs {
		want[id] = true
	}

	var out []model.Reservation
	for _, r := range s.items {
		if r.OrderKind() != kind || !want[r.OrderID()] {
			continue
		}
		if r.Status.IsActive() || r.Status == model.ReservationFulfilled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *ReservationStore) UpdateStatus(_ context.Context, id string, from, to model.ReservationStatus, notes *string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.items[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	if notes != nil {
		r.Notes = *notes
	}
	r.UpdatedAt = now
	s.items[id] = r
	return true, nil
}

func (s *ReservationStore) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.items {
		if r.IsExpiredAt(now) {
			r.Status = model.ReservationExpired
			r.UpdatedAt = now
			s.items[id] = r
			n++
		}
	}
	return n, nil
}
