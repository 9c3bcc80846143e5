package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/db"
)

// CapacityRepo keeps each tenant's raw overrides as one JSONB document, so
// sanitizing stays in capacity.Load.
type CapacityRepo struct{ db *db.DB }

func NewCapacityRepo(d *db.DB) *CapacityRepo { return &CapacityRepo{db: d} }

func (r *CapacityRepo) LoadOverrides(ctx context.Context, tenant string) (capacity.Overrides, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT overrides FROM capacity_configs WHERE tenant_id=$1`, tenant).Scan(&raw)
	if db.IsNoRows(err) {
		return capacity.Overrides{}, nil
	}
	if err != nil {
		return capacity.Overrides{}, err
	}
	var o capacity.Overrides
	if err := json.Unmarshal(raw, &o); err != nil {
		return capacity.Overrides{}, fmt.Errorf("decode overrides for %s: %w", tenant, err)
	}
	return o, nil
}

func (r *CapacityRepo) SaveOverrides(ctx context.Context, tenant string, o capacity.Overrides) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
INSERT INTO capacity_configs(tenant_id, overrides, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (tenant_id) DO UPDATE SET overrides=EXCLUDED.overrides, updated_at=now()`,
		tenant, string(raw))
	return err
}
