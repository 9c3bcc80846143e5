// Package postgres implements the tenant stores on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/domain/reservation"
)

const reservationCols = `id::text, tenant_id, name, phone, to_char(date, 'YYYY-MM-DD'), time, party_size, notes, table_id, status, created_at`

type ReservationRepo struct{ db *db.DB }

func NewReservationRepo(d *db.DB) *ReservationRepo { return &ReservationRepo{db: d} }

func (r *ReservationRepo) ListActiveByDate(ctx context.Context, tenant, date string) ([]reservation.Reservation, error) {
	return r.list(ctx, `
SELECT `+reservationCols+`
FROM reservations
WHERE tenant_id=$1 AND date=$2::date AND status='active'
ORDER BY date, time, id`, tenant, date)
}

func (r *ReservationRepo) ListActiveByPhone(ctx context.Context, tenant, phone string) ([]reservation.Reservation, error) {
	return r.list(ctx, `
SELECT `+reservationCols+`
FROM reservations
WHERE tenant_id=$1 AND phone=$2 AND status='active'
ORDER BY date, time, id`, tenant, phone)
}

func (r *ReservationRepo) GetByID(ctx context.Context, tenant, id string) (reservation.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	return scanReservation(r.db.QueryRow(ctx, `
SELECT `+reservationCols+`
FROM reservations
WHERE tenant_id=$1 AND id=$2`, tenant, id))
}

func (r *ReservationRepo) Create(ctx context.Context, tenant string, in reservation.NewReservation) (reservation.Reservation, error) {
	return scanReservation(r.db.QueryRow(ctx, `
INSERT INTO reservations(tenant_id, name, phone, date, time, party_size, notes, table_id)
VALUES ($1,$2,$3,$4::date,$5,$6,$7,$8)
RETURNING `+reservationCols,
		tenant, in.Name, in.Phone, in.Date, in.Time, in.PartySize, in.Notes, in.TableID,
	))
}

// Update writes only the fields set on p.
func (r *ReservationRepo) Update(ctx context.Context, tenant, id string, p reservation.Patch) (reservation.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	return scanReservation(r.db.QueryRow(ctx, `
UPDATE reservations SET
	name=COALESCE($3, name),
	date=COALESCE($4::date, date),
	time=COALESCE($5, time),
	party_size=COALESCE($6, party_size),
	notes=COALESCE($7, notes),
	table_id=COALESCE($8, table_id)
WHERE tenant_id=$1 AND id=$2
RETURNING `+reservationCols,
		tenant, id, p.Name, p.Date, p.Time, p.PartySize, p.Notes, p.TableID,
	))
}

func (r *ReservationRepo) Cancel(ctx context.Context, tenant, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	n, err := r.db.Exec(ctx, `UPDATE reservations SET status='cancelled' WHERE tenant_id=$1 AND id=$2`, tenant, id)
	if err != nil {
		return false, fmt.Errorf("cancel reservation: %w", err)
	}
	return n > 0, nil
}

func (r *ReservationRepo) list(ctx context.Context, sql string, args ...any) ([]reservation.Reservation, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []reservation.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanReservation(row db.Row) (reservation.Reservation, error) {
	var (
		res    reservation.Reservation
		status string
	)
	err := row.Scan(&res.ID, &res.TenantID, &res.Name, &res.Phone, &res.Date, &res.Time,
		&res.PartySize, &res.Notes, &res.TableID, &status, &res.CreatedAt)
	if db.IsNoRows(err) {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	if err != nil {
		return reservation.Reservation{}, err
	}
	res.Status = reservation.Status(status)
	return res, nil
}
