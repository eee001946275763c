package handler

import (
	"context"
	"net"
	"testing"
	"time"

	availabilityUC "github.com/fekuna/prun-market-service/internal/availability/usecase"
	commodityUC "github.com/fekuna/prun-market-service/internal/commodity/usecase"
	marketUC "github.com/fekuna/prun-market-service/internal/market/usecase"
	"github.com/fekuna/prun-market-service/internal/model"
	orderUC "github.com/fekuna/prun-market-service/internal/order/usecase"
	pricingUC "github.com/fekuna/prun-market-service/internal/pricing/usecase"
	"github.com/fekuna/prun-market-service/internal/reservation/publisher"
	reservationUC "github.com/fekuna/prun-market-service/internal/reservation/usecase"
	settingsUC "github.com/fekuna/prun-market-service/internal/settings/usecase"
	"github.com/fekuna/prun-market-service/internal/testutil"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/fekuna/prun-market-service/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type client struct {
	conn      *grpc.ClientConn
	inventory *testutil.InventoryStore
	prices    *testutil.PriceStore
}

func newClient(t *testing.T) *client {
	t.Helper()
	nop := logger.NewNop()

	orders := testutil.NewOrderStore()
	reservations := testutil.NewReservationStore()
	inventory := testutil.NewInventoryStore()
	priceStore := testutil.NewPriceStore()

	st := settingsUC.NewSettingsUseCase(testutil.NewSettingsStore(), cache.NewMemoryCache(), time.Minute, nop)
	agg := reservationUC.NewAggregator(reservations)
	avail := availabilityUC.NewAvailabilityUseCase(inventory, agg, nop)
	prices := pricingUC.NewPricingUseCase(priceStore, cache.NewMemoryCache(), time.Minute, nop)
	catalog := commodityUC.NewCommodityUseCase(testutil.NewCommodityStore(), cache.NewMemoryCache(), time.Minute, nop)
	orderUseCase := orderUC.NewOrderUseCase(orders, st, agg, catalog, prices, nil, nop)
	resUseCase := reservationUC.NewReservationUseCase(reservations, orders, avail, st, publisher.Nop{}, nop)
	mkt := marketUC.NewMarketUseCase(orders, avail, prices, st, nil, nop)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.ContextInterceptor(), middleware.LoggingInterceptor(nop)))
	RegisterMarketServiceServer(srv, NewMarketHandler(mkt, orderUseCase, avail, prices, resUseCase, st, catalog, nop))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &client{conn: conn, inventory: inventory, prices: priceStore}
}

func (c *client) call(t *testing.T, user, method string, in map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if user != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-user-id", user)
	}

	out := new(structpb.Struct)
	err = c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, out)
	return out, err
}

func nested(s *structpb.Struct, path ...string) *structpb.Value {
	v := structpb.NewStructValue(s)
	for _, p := range path {
		v = v.GetStructValue().GetFields()[p]
	}
	return v
}

func TestReservationFlowOverGRPC(t *testing.T) {
	c := newClient(t)

	out, err := c.call(t, "seller", "CreateSellOrder", map[string]interface{}{
		"commodity_ticker": "RAT",
		"location_id":      "MOR",
		"price":            "41.50",
		"currency":         "AIC",
		"limit_mode":       "reserve",
		"limit_quantity":   500,
	})
	require.NoError(t, err)
	orderID := nested(out, "order", "id").GetStringValue()
	require.NotEmpty(t, orderID)

	require.NoError(t, c.inventory.UpsertSnapshots(context.Background(), []model.InventorySnapshot{
		{OwnerID: "seller", CommodityTicker: "RAT", LocationID: "MOR", Quantity: 2000, LastSyncedAt: time.Now()},
	}))

	out, err = c.call(t, "trader", "CreateReservation", map[string]interface{}{"sell_order_id": orderID, "quantity": 300})
	require.NoError(t, err)
	resID := nested(out, "reservation", "id").GetStringValue()
	assert.Equal(t, "pending", nested(out, "reservation", "status").GetStringValue())

	out, err = c.call(t, "seller", "UpdateReservationStatus", map[string]interface{}{"reservation_id": resID, "status": "confirmed"})
	require.NoError(t, err)
	assert.True(t, nested(out, "success").GetBoolValue())

	out, err = c.call(t, "", "GetSellAvailability", map[string]interface{}{"order_id": orderID})
	require.NoError(t, err)
	assert.Equal(t, float64(1500), nested(out, "availability", "available_quantity").GetNumberValue())
	assert.Equal(t, float64(1200), nested(out, "availability", "remaining_quantity").GetNumberValue())

	out, err = c.call(t, "", "ResolvePrice", map[string]interface{}{"order_kind": "sell", "order_id": orderID})
	require.NoError(t, err)
	assert.Equal(t, "41.50 AIC", nested(out, "display").GetStringValue())

	out, err = c.call(t, "trader", "ListSellListings", map[string]interface{}{"commodity_ticker": "RAT"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), nested(out, "total").GetNumberValue())
}

func TestErrorMapping(t *testing.T) {
	c := newClient(t)

	_, err := c.call(t, "", "CreateSellOrder", map[string]interface{}{"commodity_ticker": "RAT"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.call(t, "seller", "CreateSellOrder", map[string]interface{}{"commodity_ticker": "RAT", "location_id": "MOR"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	out, err := c.call(t, "seller", "CreateBuyOrder", map[string]interface{}{
		"commodity_ticker": "DW", "location_id": "BEN", "quantity": 100, "price": 12,
	})
	require.NoError(t, err)
	buyID := nested(out, "order", "id").GetStringValue()

	_, err = c.call(t, "seller", "CreateReservation", map[string]interface{}{"buy_order_id": buyID, "quantity": 5})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err = c.call(t, "supplier", "CreateReservation", map[string]interface{}{"buy_order_id": buyID, "quantity": 5})
	require.NoError(t, err)
	resID := nested(out, "reservation", "id").GetStringValue()

	_, err = c.call(t, "seller", "UpdateReservationStatus", map[string]interface{}{"reservation_id": resID, "status": "fulfilled"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = c.call(t, "seller", "CreateBuyOrder", map[string]interface{}{
		"commodity_ticker": "DW", "location_id": "BEN", "quantity": 1, "price": 12,
	})
	assert.Equal(t, codes.Aborted, status.Code(err))

	_, err = c.call(t, "seller", "GetReservation", map[string]interface{}{"reservation_id": "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.call(t, "trader", "CreateReservation", map[string]interface{}{"buy_order_id": buyID, "quantity": 2.7})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.call(t, "trader", "CreateBuyOrder", map[string]interface{}{
		"commodity_ticker": "H2O", "location_id": "BEN", "quantity": 1e300, "price": 3,
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.call(t, "trader", "ListReservations", map[string]interface{}{"page_size": 0.5})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCatalogAndPriceImportOverGRPC(t *testing.T) {
	c := newClient(t)

	out, err := c.call(t, "admin", "ImportCommodities", map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"ticker": "rat", "name": "Basic Rations", "category": "consumables (basic)", "weight": "0.21", "volume": 0.1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), nested(out, "imported").GetNumberValue())

	out, err = c.call(t, "", "GetCommodity", map[string]interface{}{"ticker": "RAT"})
	require.NoError(t, err)
	assert.Equal(t, "Basic Rations", nested(out, "name").GetStringValue())

	_, err = c.call(t, "", "GetCommodity", map[string]interface{}{"ticker": "XYZ"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.call(t, "seller", "CreateSellOrder", map[string]interface{}{
		"commodity_ticker": "XYZ", "location_id": "MOR", "price": 1, "currency": "AIC",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	mor := "MOR"
	c.prices.PutList(model.PriceList{Code: "KAWA", Name: "Kawa", Currency: "ICA", DefaultLocationID: &mor})
	out, err = c.call(t, "admin", "ImportPrices", map[string]interface{}{
		"price_list_code": "KAWA",
		"prices": []interface{}{
			map[string]interface{}{"commodity_ticker": "RAT", "location_id": "MOR", "price": "55"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), nested(out, "imported").GetNumberValue())

	_, err = c.call(t, "seller", "CreateSellOrder", map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "BEN", "currency": "ICA", "price_list_code": "KAWAA",
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	out, err = c.call(t, "seller", "CreateSellOrder", map[string]interface{}{
		"commodity_ticker": "RAT", "location_id": "BEN", "currency": "ICA", "price_list_code": "KAWA",
	})
	require.NoError(t, err)
	orderID := nested(out, "order", "id").GetStringValue()

	out, err = c.call(t, "", "ResolvePrice", map[string]interface{}{"order_kind": "sell", "order_id": orderID})
	require.NoError(t, err)
	assert.Equal(t, "55.00 ICA", nested(out, "display").GetStringValue())
	assert.True(t, nested(out, "resolution", "is_fallback").GetBoolValue())
	assert.Equal(t, "MOR", nested(out, "resolution", "source_location_id").GetStringValue())

	out, err = c.call(t, "", "ListCommodities", map[string]interface{}{"query": "ration"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), nested(out, "total").GetNumberValue())
}
