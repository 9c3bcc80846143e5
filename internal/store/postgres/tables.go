package postgres

import (
	"context"

	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/domain/reservation"
)

type TableRepo struct{ db *db.DB }

func NewTableRepo(d *db.DB) *TableRepo { return &TableRepo{db: d} }

func (r *TableRepo) ListTables(ctx context.Context, tenant string) ([]reservation.Table, error) {
	rows, err := r.db.Query(ctx, `
SELECT tenant_id, id, name, capacity, kind, status, zone
FROM restaurant_tables
WHERE tenant_id=$1
ORDER BY capacity, name`, tenant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []reservation.Table{}
	for rows.Next() {
		var (
			t            reservation.Table
			kind, status string
		)
		if err := rows.Scan(&t.TenantID, &t.ID, &t.Name, &t.Capacity, &kind, &status, &t.Zone); err != nil {
			return nil, err
		}
		t.Kind = reservation.TableKind(kind)
		t.Status = reservation.TableStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

// PutTable inserts or replaces one table.
func (r *TableRepo) PutTable(ctx context.Context, t reservation.Table) error {
	if t.Kind == "" {
		t.Kind = reservation.KindTable
	}
	if t.Status == "" {
		t.Status = reservation.TableFree
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO restaurant_tables(tenant_id, id, name, capacity, kind, status, zone)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (tenant_id, id) DO UPDATE SET
	name=EXCLUDED.name, capacity=EXCLUDED.capacity, kind=EXCLUDED.kind,
	status=EXCLUDED.status, zone=EXCLUDED.zone`,
		t.TenantID, t.ID, t.Name, t.Capacity, string(t.Kind), string(t.Status), t.Zone)
	return err
}
