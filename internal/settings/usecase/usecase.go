package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"go.uber.org/zap"
)

type settingsUseCase struct {
	repo   settings.Repository
	cache  cache.Cache
	ttl    time.Duration
	logger logger.ZapLogger
}

func NewSettingsUseCase(repo settings.Repository, c cache.Cache, ttl time.Duration, log logger.ZapLogger) settings.UseCase {
	return &settingsUseCase{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: log,
	}
}

func userKey(userID string) string       { return "settings:user:" + userID }
func channelKey(channelID string) string { return "settings:channel:" + channelID }

func (uc *settingsUseCase) Effective(ctx context.Context, input *settings.ResolveInput) (settings.Resolved, error) {
	var user, channel settings.Values

	if input.UserID != "" {
		v, err := cache.GetOrCompute(ctx, uc.cache, userKey(input.UserID), uc.ttl, func(ctx context.Context) (settings.Values, error) {
			return uc.repo.GetUserSettings(ctx, input.UserID)
		})
		if err != nil {
			return settings.Resolved{}, fmt.Errorf("load user settings: %w", err)
		}
		user = v
	}

	if input.ChannelID != "" {
		v, err := cache.GetOrCompute(ctx, uc.cache, channelKey(input.ChannelID), uc.ttl, func(ctx context.Context) (settings.Values, error) {
			return uc.repo.GetChannelSettings(ctx, input.ChannelID)
		})
		if err != nil {
			return settings.Resolved{}, fmt.Errorf("load channel settings: %w", err)
		}
		channel = v
	}

	return settings.ResolveAll(input.Explicit, channel, user), nil
}

func (uc *settingsUseCase) SetUserSetting(ctx context.Context, userID string, key settings.Key, value string) error {
	if err := settings.Validate(key, value); err != nil {
		return err
	}
	if err := uc.repo.SetUserSetting(ctx, userID, key, value); err != nil {
		return err
	}
	if err := cache.Invalidate(ctx, uc.cache, userKey(userID)); err != nil {
		uc.logger.Warn("failed to invalidate user settings cache", zap.String("user_id", userID), zap.Error(err))
	}
	return nil
}

func (uc *settingsUseCase) SetChannelSetting(ctx context.Context, channelID string, key settings.Key, value string) error {
	if err := settings.Validate(key, value); err != nil {
		return err
	}
	if err := uc.repo.SetChannelSetting(ctx, channelID, key, value); err != nil {
		return err
	}
	if err := cache.Invalidate(ctx, uc.cache, channelKey(channelID)); err != nil {
		uc.logger.Warn("failed to invalidate channel settings cache", zap.String("channel_id", channelID), zap.Error(err))
	}
	return nil
}
