package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetPriceList(ctx context.Context, code string) (*model.PriceList, error) {
	var list model.PriceList
	query := `SELECT code, name, currency, default_location_id FROM price_lists WHERE code = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &list, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

func (r *PGRepository) BatchGetPriceLists(ctx context.Context, codes []string) ([]model.PriceList, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT code, name, currency, default_location_id FROM price_lists WHERE code IN (?)`, codes)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var lists []model.PriceList
	if err := r.DB.SelectContext(ctx, &lists, query, args...); err != nil {
		return nil, err
	}
	return lists, nil
}

func (r *PGRepository) BatchGetPrices(ctx context.Context, codes, tickers []string) ([]model.Price, error) {
	if len(codes) == 0 || len(tickers) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
        SELECT price_list_code, commodity_ticker, location_id, price
        FROM prices
        WHERE price_list_code IN (?) AND commodity_ticker IN (?)
    `, codes, tickers)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var prices []model.Price
	if err := r.DB.SelectContext(ctx, &prices, query, args...); err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *PGRepository) UpsertPrices(ctx context.Context, prices []model.Price) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO prices (price_list_code, commodity_ticker, location_id, price, updated_at)
        VALUES (:price_list_code, :commodity_ticker, :location_id, :price, NOW())
        ON CONFLICT (price_list_code, commodity_ticker, location_id)
        DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
    `
	for i := range prices {
		if _, err := tx.NamedExecContext(ctx, query, &prices[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}
