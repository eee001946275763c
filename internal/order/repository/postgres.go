package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order/dto"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

const (
	sellColumns = `id, owner_id, commodity_ticker, location_id, price, currency, price_list_code,
            order_type, limit_mode, limit_quantity, created_at, updated_at`
	buyColumns = `id, owner_id, commodity_ticker, location_id, quantity, price, currency, price_list_code,
            order_type, created_at, updated_at`
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateSellOrder(ctx context.Context, o *model.SellOrder) error {
	query := `
        INSERT INTO sell_orders (
            id, owner_id, commodity_ticker, location_id, price, currency, price_list_code,
            order_type, limit_mode, limit_quantity, created_at, updated_at
        )
        VALUES (
            :id, :owner_id, :commodity_ticker, :location_id, :price, :currency, :price_list_code,
            :order_type, :limit_mode, :limit_quantity, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return mapWriteError(err, "sell")
}

func (r *PGRepository) FindSellOrderByID(ctx context.Context, id string) (*model.SellOrder, error) {
	var o model.SellOrder
	err := r.DB.GetContext(ctx, &o, `SELECT `+sellColumns+` FROM sell_orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) ListSellOrders(ctx context.Context, f *dto.OrderFilters) ([]model.SellOrder, int, error) {
	var orders []model.SellOrder
	count, err := r.list(ctx, &orders, "sell_orders", sellColumns, f)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) UpdateSellOrder(ctx context.Context, o *model.SellOrder) error {
	query := `
        UPDATE sell_orders
        SET price = :price,
            currency = :currency,
            price_list_code = :price_list_code,
            order_type = :order_type,
            limit_mode = :limit_mode,
            limit_quantity = :limit_quantity,
            updated_at = :updated_at
        WHERE id = :id AND owner_id = :owner_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return mapWriteError(err, "sell")
}

func (r *PGRepository) DeleteSellOrder(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sell_orders WHERE id = $1", id)
	return err
}

func (r *PGRepository) CreateBuyOrder(ctx context.Context, o *model.BuyOrder) error {
	query := `
        INSERT INTO buy_orders (
            id, owner_id, commodity_ticker, location_id, quantity, price, currency, price_list_code,
            order_type, created_at, updated_at
        )
        VALUES (
            :id, :owner_id, :commodity_ticker, :location_id, :quantity, :price, :currency, :price_list_code,
            :order_type, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return mapWriteError(err, "buy")
}

func (r *PGRepository) FindBuyOrderByID(ctx context.Context, id string) (*model.BuyOrder, error) {
	var o model.BuyOrder
	err := r.DB.GetContext(ctx, &o, `SELECT `+buyColumns+` FROM buy_orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) ListBuyOrders(ctx context.Context, f *dto.OrderFilters) ([]model.BuyOrder, int, error) {
	var orders []model.BuyOrder
	count, err := r.list(ctx, &orders, "buy_orders", buyColumns, f)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) UpdateBuyOrder(ctx context.Context, o *model.BuyOrder) error {
	query := `
        UPDATE buy_orders
        SET quantity = :quantity,
            price = :price,
            currency = :currency,
            price_list_code = :price_list_code,
            order_type = :order_type,
            updated_at = :updated_at
        WHERE id = :id AND owner_id = :owner_id
    `
	_, err := r.DB.NamedExecContext(ctx, query, o)
	return mapWriteError(err, "buy")
}

func (r *PGRepository) DeleteBuyOrder(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM buy_orders WHERE id = $1", id)
	return err
}

func (r *PGRepository) IsSellOrderUnique(ctx context.Context, key model.OrderKey, excludeID string) (bool, error) {
	return r.isUnique(ctx, "sell_orders", key, excludeID)
}

func (r *PGRepository) IsBuyOrderUnique(ctx context.Context, key model.OrderKey, excludeID string) (bool, error) {
	return r.isUnique(ctx, "buy_orders", key, excludeID)
}

func (r *PGRepository) isUnique(ctx context.Context, table string, key model.OrderKey, excludeID string) (bool, error) {
	var count int
	query := `SELECT count(*) FROM ` + table + `
        WHERE owner_id = $1 AND commodity_ticker = $2 AND location_id = $3 AND order_type = $4 AND currency = $5`
	args := []interface{}{key.OwnerID, key.CommodityTicker, key.LocationID, key.OrderType, key.Currency}
	if excludeID != "" {
		query += ` AND id != $6`
		args = append(args, excludeID)
	}

	if err := r.DB.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count == 0, nil
}

func (r *PGRepository) list(ctx context.Context, dest interface{}, table, columns string, f *dto.OrderFilters) (int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.OwnerID != "" {
		conditions = append(conditions, "owner_id = :owner_id")
		args["owner_id"] = f.OwnerID
	}
	if f.CommodityTicker != "" {
		conditions = append(conditions, "commodity_ticker = :commodity_ticker")
		args["commodity_ticker"] = strings.ToUpper(f.CommodityTicker)
	}
	if f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.OrderType != "" {
		conditions = append(conditions, "order_type = :order_type")
		args["order_type"] = f.OrderType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var count int
	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM "+table+whereClause, args)
	if err != nil {
		return 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY created_at DESC", columns, table, whereClause)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, dest, args); err != nil {
		return 0, err
	}
	return count, nil
}

// mapWriteError turns the uniqueness constraint into a Conflict.
func mapWriteError(err error, kind string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflictf("a %s order for this commodity, location, type and currency already exists", kind)
	}
	return err
}
