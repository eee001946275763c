package repository

import (
	"context"

	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (r *PGRepository) GetUserSettings(ctx context.Context, userID string) (settings.Values, error) {
	return r.load(ctx, `SELECT key, value FROM user_settings WHERE user_id = $1`, userID)
}

func (r *PGRepository) GetChannelSettings(ctx context.Context, channelID string) (settings.Values, error) {
	return r.load(ctx, `SELECT key, value FROM channel_settings WHERE channel_id = $1`, channelID)
}

func (r *PGRepository) SetUserSetting(ctx context.Context, userID string, key settings.Key, value string) error {
	query := `
        INSERT INTO user_settings (user_id, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `
	_, err := r.DB.ExecContext(ctx, query, userID, string(key), value)
	return err
}

func (r *PGRepository) SetChannelSetting(ctx context.Context, channelID string, key settings.Key, value string) error {
	query := `
        INSERT INTO channel_settings (channel_id, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (channel_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `
	_, err := r.DB.ExecContext(ctx, query, channelID, string(key), value)
	return err
}

func (r *PGRepository) load(ctx context.Context, query, id string) (settings.Values, error) {
	var rows []settingRow
	if err := r.DB.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, err
	}

	values := make(settings.Values, len(rows))
	for _, row := range rows {
		// Rows written before a key was retired are ignored.
		if k := settings.Key(row.Key); k.IsValid() {
			values[k] = row.Value
		}
	}
	return values, nil
}
