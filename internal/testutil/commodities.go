package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/model"
)

type CommodityStore struct {
	mu          sync.Mutex
	items       map[string]model.Commodity
	TickerReads int
}

func NewCommodityStore() *CommodityStore {
	return &CommodityStore{items: map[string]model.Commodity{}}
}

func (s *CommodityStore) FindByTicker(_ context.Context, ticker string) (*model.Commodity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[ticker]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *CommodityStore) FindAll(_ context.Context, f *dto.CommodityFilters) ([]model.Commodity, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Commodity
	q := strings.ToLower(f.Query)
	for _, c := range s.items {
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.Ticker), q) && !strings.Contains(strings.ToLower(c.Name), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	total := len(out)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * f.PageSize
		if start > len(out) {
			start = len(out)
		}
		end := start + f.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (s *CommodityStore) ListTickers(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TickerReads++
	out := make([]string, 0, len(s.items))
	for t := range s.items {
		out = append(out, t)
	}
	return out, nil
}

func (s *CommodityStore) UpsertMany(_ context.Context, items []model.Commodity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range items {
		s.items[c.Ticker] = c
	}
	return nil
}
