package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/prun-market-service/internal/market/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/pkg/search"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	docs      map[string][]byte
	lastQuery map[string]interface{}
	searchErr error
}

func newFakeClient() *fakeClient { return &fakeClient{docs: map[string][]byte{}} }

func (f *fakeClient) CreateIndex(context.Context, string, string) error { return nil }

func (f *fakeClient) Index(_ context.Context, _ string, id string, doc interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	f.docs[id] = b
	return nil
}

func (f *fakeClient) Delete(_ context.Context, _ string, id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeClient) Search(_ context.Context, _ string, q map[string]interface{}) (*search.SearchResult, error) {
	f.lastQuery = q
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	res := &search.SearchResult{}
	for id, src := range f.docs {
		res.Hits.Hits = append(res.Hits.Hits, struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		}{ID: id, Source: src})
	}
	res.Hits.Total.Value = len(res.Hits.Hits)
	return res, nil
}

func TestIndexAndSearchRoundTrip(t *testing.T) {
	client := newFakeClient()
	idx := NewElasticIndexer(client, "sell_listings")
	ctx := context.Background()

	o := &model.SellOrder{
		BaseModel:       model.BaseModel{ID: "s1"},
		OwnerID:         "seller",
		CommodityTicker: "RAT",
		LocationID:      "MOR",
		Price:           decimal.RequireFromString("41.5"),
		Currency:        "AIC",
		OrderType:       model.OrderTypeInternal,
		LimitMode:       model.LimitModeNone,
	}
	require.NoError(t, idx.IndexSellOrder(ctx, o))

	got, err := idx.SearchSellOrders(ctx, &dto.ListingFilters{Query: "ra"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "RAT", got[0].CommodityTicker)
	assert.True(t, got[0].Price.Equal(o.Price))

	require.NoError(t, idx.DeleteSellOrder(ctx, "s1"))
	got, err = idx.SearchSellOrders(ctx, &dto.ListingFilters{Query: "ra"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchPropagatesErrors(t *testing.T) {
	client := newFakeClient()
	client.searchErr = errors.New("cluster red")
	_, err := NewElasticIndexer(client, "sell_listings").SearchSellOrders(context.Background(), &dto.ListingFilters{Query: "x"})
	assert.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(&dto.ListingFilters{Query: "rat", LocationID: "MOR", OrderType: model.OrderTypePartner})

	b := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	must := b["must"].([]map[string]interface{})
	require.Len(t, must, 1)
	assert.Equal(t, "*RAT*", must[0]["query_string"].(map[string]interface{})["query"])

	filter := b["filter"].([]map[string]interface{})
	assert.Equal(t, []map[string]interface{}{
		{"term": map[string]interface{}{"location_id": "MOR"}},
		{"term": map[string]interface{}{"order_type": "partner"}},
	}, filter)
	assert.Equal(t, maxHits, q["size"])
}
