package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fekuna/prun-market-service/internal/market/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/pkg/search"
)

// maxHits bounds one search; listings are sorted and paged in memory.
const maxHits = 1000

const sellOrderMapping = `{
	"mappings": {
		"properties": {
			"owner_id": { "type": "keyword" },
			"commodity_ticker": { "type": "keyword" },
			"location_id": { "type": "keyword" },
			"currency": { "type": "keyword" },
			"order_type": { "type": "keyword" },
			"limit_mode": { "type": "keyword" },
			"price_list_code": { "type": "keyword" },
			"price": { "type": "double" },
			"updated_at": { "type": "date" }
		}
	}
}`

type SearchClient interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResult, error)
}

// ElasticIndexer keeps sell orders searchable by ticker and location.
type ElasticIndexer struct {
	client SearchClient
	index  string
}

func NewElasticIndexer(client SearchClient, index string) *ElasticIndexer {
	return &ElasticIndexer{client: client, index: index}
}

func (i *ElasticIndexer) EnsureIndex(ctx context.Context) error {
	return i.client.CreateIndex(ctx, i.index, sellOrderMapping)
}

func (i *ElasticIndexer) IndexSellOrder(ctx context.Context, o *model.SellOrder) error {
	return i.client.Index(ctx, i.index, o.ID, o)
}

func (i *ElasticIndexer) DeleteSellOrder(ctx context.Context, id string) error {
	return i.client.Delete(ctx, i.index, id)
}

func (i *ElasticIndexer) SearchSellOrders(ctx context.Context, f *dto.ListingFilters) ([]model.SellOrder, error) {
	res, err := i.client.Search(ctx, i.index, BuildQuery(f))
	if err != nil {
		return nil, err
	}

	orders := make([]model.SellOrder, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var o model.SellOrder
		if err := json.Unmarshal(hit.Source, &o); err != nil {
			return nil, fmt.Errorf("decode sell order %s: %w", hit.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// BuildQuery matches the free-text query against ticker and location and
// applies the structured filters as exact terms.
func BuildQuery(f *dto.ListingFilters) map[string]interface{} {
	must := []map[string]interface{}{}
	if q := strings.TrimSpace(f.Query); q != "" {
		must = append(must, map[string]interface{}{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", strings.ToUpper(q)),
				"fields": []string{"commodity_ticker^3", "location_id"},
			},
		})
	}

	filter := []map[string]interface{}{}
	terms := map[string]string{
		"commodity_ticker": strings.ToUpper(f.CommodityTicker),
		"location_id":      f.LocationID,
		"owner_id":         f.OwnerID,
		"order_type":       string(f.OrderType),
	}
	for _, field := range []string{"commodity_ticker", "location_id", "owner_id", "order_type"} {
		if v := terms[field]; v != "" {
			filter = append(filter, map[string]interface{}{"term": map[string]interface{}{field: v}})
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"size": maxHits,
	}
}
