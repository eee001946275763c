package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	user    map[string]settings.Values
	channel map[string]settings.Values
	reads   int
}

func newCountingRepo() *countingRepo {
	return &countingRepo{user: map[string]settings.Values{}, channel: map[string]settings.Values{}}
}

func (r *countingRepo) GetUserSettings(_ context.Context, id string) (settings.Values, error) {
	r.reads++
	return r.user[id], nil
}

func (r *countingRepo) GetChannelSettings(_ context.Context, id string) (settings.Values, error) {
	r.reads++
	return r.channel[id], nil
}

func (r *countingRepo) SetUserSetting(_ context.Context, id string, k settings.Key, v string) error {
	if r.user[id] == nil {
		r.user[id] = settings.Values{}
	}
	r.user[id][k] = v
	return nil
}

func (r *countingRepo) SetChannelSetting(_ context.Context, id string, k settings.Key, v string) error {
	if r.channel[id] == nil {
		r.channel[id] = settings.Values{}
	}
	r.channel[id][k] = v
	return nil
}

func TestEffective_layersAndCaches(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	repo.user["u1"] = settings.Values{settings.KeyDefaultCurrency: "ICA"}
	repo.channel["c1"] = settings.Values{settings.KeyDefaultCurrency: "NCC"}
	uc := NewSettingsUseCase(repo, cache.NewMemoryCache(), time.Minute, logger.NewNop())

	r, err := uc.Effective(ctx, &settings.ResolveInput{UserID: "u1", ChannelID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "NCC", r.Get(settings.KeyDefaultCurrency))
	assert.Equal(t, settings.SourceChannel, r.Source(settings.KeyDefaultCurrency))

	_, err = uc.Effective(ctx, &settings.ResolveInput{UserID: "u1", ChannelID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.reads)
}

func TestSetUserSetting_invalidatesCache(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	uc := NewSettingsUseCase(repo, cache.NewMemoryCache(), time.Hour, logger.NewNop())

	r, err := uc.Effective(ctx, &settings.ResolveInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Int(settings.KeyReservationExpiryHours))

	require.NoError(t, uc.SetUserSetting(ctx, "u1", settings.KeyReservationExpiryHours, "12"))

	r, err = uc.Effective(ctx, &settings.ResolveInput{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 12, r.Int(settings.KeyReservationExpiryHours))
	assert.Equal(t, settings.SourceUser, r.Source(settings.KeyReservationExpiryHours))
}

func TestSetChannelSetting_rejectsUnknownKey(t *testing.T) {
	uc := NewSettingsUseCase(newCountingRepo(), cache.NewMemoryCache(), time.Hour, logger.NewNop())
	err := uc.SetChannelSetting(context.Background(), "c1", settings.Key("colour"), "red")
	assert.Error(t, err)
}
