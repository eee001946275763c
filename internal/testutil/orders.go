package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order/dto"
)

type OrderStore struct {
	mu   sync.Mutex
	sell map[string]model.SellOrder
	buy  map[string]model.BuyOrder
}

func NewOrderStore() *OrderStore {
	return &OrderStore{sell: map[string]model.SellOrder{}, buy: map[string]model.BuyOrder{}}
}

func (s *OrderStore) CreateSellOrder(_ context.Context, o *model.SellOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sell[o.ID] = *o
	return nil
}

func (s *OrderStore) FindSellOrderByID(_ context.Context, id string) (*model.SellOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.sell[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *OrderStore) ListSellOrders(_ context.Context, f *dto.OrderFilters) ([]model.SellOrder, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SellOrder
	for _, o := range s.sell {
		if matches(f, o.OwnerID, o.CommodityTicker, o.LocationID, o.OrderType) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f), len(out), nil
}

func (s *OrderStore) UpdateSellOrder(_ context.Context, o *model.SellOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sell[o.ID] = *o
	return nil
}

func (s *OrderStore) DeleteSellOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sell, id)
	return nil
}

func (s *OrderStore) CreateBuyOrder(_ context.Context, o *model.BuyOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buy[o.ID] = *o
	return nil
}

func (s *OrderStore) FindBuyOrderByID(_ context.Context, id string) (*model.BuyOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.buy[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *OrderStore) ListBuyOrders(_ context.Context, f *dto.OrderFilters) ([]model.BuyOrder, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BuyOrder
	for _, o := range s.buy {
		if matches(f, o.OwnerID, o.CommodityTicker, o.LocationID, o.OrderType) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, f), len(out), nil
}

func (s *OrderStore) UpdateBuyOrder(_ context.Context, o *model.BuyOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buy[o.ID] = *o
	return nil
}

func (s *OrderStore) DeleteBuyOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buy, id)
	return nil
}

func (s *OrderStore) IsSellOrderUnique(_ context.Context, key model.OrderKey, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.sell {
		if id != excludeID && o.Key() == key {
			return false, nil
		}
	}
	return true, nil
}

func (s *OrderStore) IsBuyOrderUnique(_ context.Context, key model.OrderKey, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.buy {
		if id != excludeID && o.Key() == key {
			return false, nil
		}
	}
	return true, nil
}

func matches(f *dto.OrderFilters, owner, ticker, location string, t model.OrderType) bool {
	if f == nil {
		return true
	}
	return (f.OwnerID == "" || f.OwnerID == owner) &&
		(f.CommodityTicker == "" || strings.EqualFold(f.CommodityTicker, ticker)) &&
		(f.LocationID == "" || f.LocationID == location) &&
		(f.OrderType == "" || f.OrderType == t)
}

func page[T any](items []T, f *dto.OrderFilters) []T {
	if f == nil || f.PageSize <= 0 {
		return items
	}
	p := f.Page
	if p < 1 {
		p = 1
	}
	start := (p - 1) * f.PageSize
	if start >= len(items) {
		return nil
	}
	end := start + f.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
