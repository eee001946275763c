package testutil

import (
	"context"
	"sync"

	"github.com/fekuna/prun-market-service/internal/settings"
)

type SettingsStore struct {
	mu      sync.Mutex
	user    map[string]settings.Values
	channel map[string]settings.Values
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{user: map[string]settings.Values{}, channel: map[string]settings.Values{}}
}

func (s *SettingsStore) GetUserSettings(_ context.Context, userID string) (settings.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyValues(s.user[userID]), nil
}

func (s *SettingsStore) GetChannelSettings(_ context.Context, channelID string) (settings.Values, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyValues(s.channel[channelID]), nil
}

func (s *SettingsStore) SetUserSetting(_ context.Context, userID string, key settings.Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user[userID] == nil {
		s.user[userID] = settings.Values{}
	}
	s.user[userID][key] = value
	return nil
}

func (s *SettingsStore) SetChannelSetting(_ context.Context, channelID string, key settings.Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel[channelID] == nil {
		s.channel[channelID] = settings.Values{}
	}
	s.channel[channelID][key] = value
	return nil
}

func copyValues(v settings.Values) settings.Values {
	out := make(settings.Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
