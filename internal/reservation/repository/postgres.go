package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const reservationColumns = `id, sell_order_id, buy_order_id, owner_id, counterparty_id,
        quantity, status, notes, expires_at, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
        INSERT INTO reservations (
            id, sell_order_id, buy_order_id, owner_id, counterparty_id,
            quantity, status, notes, expires_at, created_at, updated_at
        )
        VALUES (
            :id, :sell_order_id, :buy_order_id, :owner_id, :counterparty_id,
            :quantity, :status, :notes, :expires_at, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, res)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	var res model.Reservation
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &res, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) ListByParticipant(ctx context.Context, f *dto.ReservationFilters) ([]model.Reservation, int, error) {
	var items []model.Reservation
	var count int

	conditions := []string{"(owner_id = :user_id OR counterparty_id = :user_id)"}
	args := map[string]interface{}{"user_id": f.UserID}

	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			name := fmt.Sprintf("status_%d", i)
			placeholders[i] = ":" + name
			args[name] = string(s)
		}
		// Match on the status readers see, with lazy expiry applied.
		conditions = append(conditions, `CASE
            WHEN status IN (:active_pending, :active_confirmed) AND expires_at IS NOT NULL AND expires_at <= :now
            THEN :expired ELSE status END IN (`+strings.Join(placeholders, ", ")+")")
		args["active_pending"] = string(model.ReservationPending)
		args["active_confirmed"] = string(model.ReservationConfirmed)
		args["expired"] = string(model.ReservationExpired)
		args["now"] = f.Now
	}

	whereClause := " WHERE " + strings.Join(conditions, " AND ")

	countQuery, countArgs, err := sqlx.Named("SELECT count(*) FROM reservations"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(countQuery), countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	query := "SELECT " + reservationColumns + " FROM reservations" + whereClause + " ORDER BY updated_at DESC"
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

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) ListHoldingByOrderIDs(ctx context.Context, kind model.OrderKind, orderIDs []string) ([]model.Reservation, error) {
	if len(orderIDs) == 0 {
		return []model.Reservation{}, nil
	}

	column := "sell_order_id"
	if kind == model.OrderKindBuy {
		column = "buy_order_id"
	}

	query, args, err := sqlx.In(`
        SELECT `+reservationColumns+` FROM reservations
        WHERE `+column+` IN (?) AND status IN (?)
    `, orderIDs, []string{
		string(model.ReservationPending),
		string(model.ReservationConfirmed),
		string(model.ReservationFulfilled),
	})
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var items []model.Reservation
	err = r.DB.SelectContext(ctx, &items, query, args...)
	return items, err
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, from, to model.ReservationStatus, notes *string, now time.Time) (bool, error) {
	query := `
        UPDATE reservations
        SET status = $1, notes = COALESCE($2, notes), updated_at = $3
        WHERE id = $4 AND status = $5
    `
	res, err := r.DB.ExecContext(ctx, query, string(to), notes, now, id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update reservation status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *PGRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
        UPDATE reservations
        SET status = $1, updated_at = $2
        WHERE status IN ($3, $4) AND expires_at IS NOT NULL AND expires_at <= $2
    `
	res, err := r.DB.ExecContext(ctx, query,
		string(model.ReservationExpired), now,
		string(model.ReservationPending), string(model.ReservationConfirmed),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire reservations: %w", err)
	}
	return res.RowsAffected()
}
