package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/prun-market-service/internal/commodity/dto"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const commodityColumns = `ticker, name, category, weight, volume, updated_at`

func (r *PGRepository) FindByTicker(ctx context.Context, ticker string) (*model.Commodity, error) {
	var c model.Commodity
	query := `SELECT ` + commodityColumns + ` FROM commodities WHERE ticker = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &c, query, ticker)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CommodityFilters) ([]model.Commodity, int, error) {
	var items []model.Commodity
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.Query != "" {
		conditions = append(conditions, "(ticker ILIKE :search OR name ILIKE :search)")
		args["search"] = "%" + f.Query + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM commodities"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count commodities: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM commodities%s ORDER BY ticker", commodityColumns, whereClause)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *PGRepository) ListTickers(ctx context.Context) ([]string, error) {
	var tickers []string
	if err := r.DB.SelectContext(ctx, &tickers, `SELECT ticker FROM commodities`); err != nil {
		return nil, err
	}
	return tickers, nil
}

func (r *PGRepository) UpsertMany(ctx context.Context, items []model.Commodity) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO commodities (ticker, name, category, weight, volume, updated_at)
        VALUES (:ticker, :name, :category, :weight, :volume, :updated_at)
        ON CONFLICT (ticker)
        DO UPDATE SET
            name = EXCLUDED.name,
            category = EXCLUDED.category,
            weight = EXCLUDED.weight,
            volume = EXCLUDED.volume,
            updated_at = EXCLUDED.updated_at
    `
	for i := range items {
		if _, err := tx.NamedExecContext(ctx, query, &items[i]); err != nil {
			return fmt.Errorf("failed to upsert commodity %s: %w", items[i].Ticker, err)
		}
	}

	return tx.Commit()
}
