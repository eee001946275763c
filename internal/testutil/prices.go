package testutil

import (
	"context"
	"sync"

	"github.com/fekuna/prun-market-service/internal/model"
)

type PriceStore struct {
	mu     sync.Mutex
	lists  map[string]model.PriceList
	prices map[[3]string]model.Price
}

func NewPriceStore() *PriceStore {
	return &PriceStore{lists: map[string]model.PriceList{}, prices: map[[3]string]model.Price{}}
}

func (s *PriceStore) PutList(l model.PriceList) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[l.Code] = l
}

func (s *PriceStore) GetPriceList(_ context.Context, code string) (*model.PriceList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[code]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *PriceStore) BatchGetPriceLists(_ context.Context, codes []string) ([]model.PriceList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.PriceList
	for _, c := range codes {
		if l, ok := s.lists[c]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *PriceStore) BatchGetPrices(_ context.Context, codes, tickers []string) ([]model.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wantCode := map[string]bool{}
	for _, c := range codes {
		wantCode[c] = true
	}
	wantTicker := map[string]bool{}
	for _, t := range tickers {
		wantTicker[t] = true
	}
	var out []model.Price
	for _, p := range s.prices {
		if wantCode[p.PriceListCode] && wantTicker[p.CommodityTicker] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PriceStore) UpsertPrices(_ context.Context, prices []model.Price) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range prices {
		s.prices[[3]string{p.PriceListCode, p.CommodityTicker, p.LocationID}] = p
	}
	return nil
}
