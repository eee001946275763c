package middleware

import (
	"context"
	"time"

	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	ChannelIDKey contextKey = "channel_id"
)

// ContextInterceptor lifts caller identity headers into the request context.
func ContextInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-user-id"); len(v) > 0 && v[0] != "" {
				ctx = context.WithValue(ctx, UserIDKey, v[0])
			}
			if v := md.Get("x-channel-id"); len(v) > 0 && v[0] != "" {
				ctx = context.WithValue(ctx, ChannelIDKey, v[0])
			}
		}
		return handler(ctx, req)
	}
}

func LoggingInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			log.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("grpc request", fields...)
		}
		return resp, err
	}
}
