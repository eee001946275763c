package settings

import "context"

type ResolveInput struct {
	UserID    string
	ChannelID string
	Explicit  Values
}

type UseCase interface {
	Effective(ctx context.Context, input *ResolveInput) (Resolved, error)
	SetUserSetting(ctx context.Context, userID string, key Key, value string) error
	SetChannelSetting(ctx context.Context, channelID string, key Key, value string) error
}
