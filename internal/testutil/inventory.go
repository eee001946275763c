package testutil

import (
	"context"
	"sync"

	"github.com/fekuna/prun-market-service/internal/model"
)

type InventoryStore struct {
	mu    sync.Mutex
	snaps map[model.InventoryKey]model.InventorySnapshot
}

func NewInventoryStore() *InventoryStore {
	return &InventoryStore{snaps: map[model.InventoryKey]model.InventorySnapshot{}}
}

func (s *InventoryStore) GetSnapshot(_ context.Context, ownerID, ticker, locationID string) (*model.InventorySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[model.InventoryKey{OwnerID: ownerID, CommodityTicker: ticker, LocationID: locationID}]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *InventoryStore) BatchGetSnapshots(_ context.Context, keys []model.InventoryKey) ([]model.InventorySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.InventorySnapshot
	for _, k := range keys {
		if snap, ok := s.snaps[k]; ok {
			out = append(out, snap)
		}
	}
	return out, nil
}

func (s *InventoryStore) UpsertSnapshots(_ context.Context, snaps []model.InventorySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range snaps {
		if cur, ok := s.snaps[snap.Key()]; ok && cur.LastSyncedAt.After(snap.LastSyncedAt) {
			continue
		}
		s.snaps[snap.Key()] = snap
	}
	return nil
}
