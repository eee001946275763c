package auth

import (
	"context"

	"github.com/fekuna/prun-market-service/pkg/middleware"
	"google.golang.org/grpc/metadata"
)

// GetUserID returns the acting user, preferring the value set by the context
// interceptor and falling back to raw metadata.
func GetUserID(ctx context.Context) string {
	if val, ok := ctx.Value(middleware.UserIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, "x-user-id")
}

// GetChannelID returns the chat channel the request originated from, if any.
func GetChannelID(ctx context.Context) string {
	if val, ok := ctx.Value(middleware.ChannelIDKey).(string); ok {
		return val
	}
	return fromMetadata(ctx, "x-channel-id")
}

func fromMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get(key); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}
