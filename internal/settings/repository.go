package settings

import "context"

type Repository interface {
	GetUserSettings(ctx context.Context, userID string) (Values, error)
	GetChannelSettings(ctx context.Context, channelID string) (Values, error)
	SetUserSetting(ctx context.Context, userID string, key Key, value string) error
	SetChannelSetting(ctx context.Context, channelID string, key Key, value string) error
}
