package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "market.v1.MarketService"

// MarketServiceServer is the server API for market.v1.MarketService. Every
// method exchanges google.protobuf.Struct messages whose fields follow the
// JSON names of the domain types.
type MarketServiceServer interface {
	ListSellListings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBuyListings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSellAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBuyRemaining(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolvePrice(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateReservationStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListReservations(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateSellOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSellOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteSellOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateBuyOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateBuyOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteBuyOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)

	SetUserSetting(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetChannelSetting(context.Context, *structpb.Struct) (*structpb.Struct, error)

	GetCommodity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCommodities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportCommodities(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ImportPrices(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(MarketServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MarketServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(MarketServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var MarketServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MarketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListSellListings", MarketServiceServer.ListSellListings),
		unary("ListBuyListings", MarketServiceServer.ListBuyListings),
		unary("GetSellAvailability", MarketServiceServer.GetSellAvailability),
		unary("GetBuyRemaining", MarketServiceServer.GetBuyRemaining),
		unary("ResolvePrice", MarketServiceServer.ResolvePrice),
		unary("CreateReservation", MarketServiceServer.CreateReservation),
		unary("UpdateReservationStatus", MarketServiceServer.UpdateReservationStatus),
		unary("GetReservation", MarketServiceServer.GetReservation),
		unary("ListReservations", MarketServiceServer.ListReservations),
		unary("CreateSellOrder", MarketServiceServer.CreateSellOrder),
		unary("UpdateSellOrder", MarketServiceServer.UpdateSellOrder),
		unary("DeleteSellOrder", MarketServiceServer.DeleteSellOrder),
		unary("CreateBuyOrder", MarketServiceServer.CreateBuyOrder),
		unary("UpdateBuyOrder", MarketServiceServer.UpdateBuyOrder),
		unary("DeleteBuyOrder", MarketServiceServer.DeleteBuyOrder),
		unary("SetUserSetting", MarketServiceServer.SetUserSetting),
		unary("SetChannelSetting", MarketServiceServer.SetChannelSetting),
		unary("GetCommodity", MarketServiceServer.GetCommodity),
		unary("ListCommodities", MarketServiceServer.ListCommodities),
		unary("ImportCommodities", MarketServiceServer.ImportCommodities),
		unary("ImportPrices", MarketServiceServer.ImportPrices),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "market/v1/market.proto",
}

func RegisterMarketServiceServer(s grpc.ServiceRegistrar, srv MarketServiceServer) {
	s.RegisterService(&MarketServiceDesc, srv)
}
