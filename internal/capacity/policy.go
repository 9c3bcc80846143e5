package capacity

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store persists raw tenant overrides. A tenant with nothing stored yields
// zero Overrides and no error.
type Store interface {
	LoadOverrides(ctx context.Context, tenant string) (Overrides, error)
	SaveOverrides(ctx context.Context, tenant string, o Overrides) error
}

// Policy is the config collaborator the engines read from.
type Policy struct {
	store    Store
	registry *Registry
	log      *zap.Logger
}

func NewPolicy(store Store, registry *Registry, log *zap.Logger) *Policy {
	if registry == nil {
		registry = NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Policy{store: store, registry: registry, log: log}
}

func (p *Policy) Registry() *Registry { return p.registry }

// Get returns the tenant's sanitized configuration.
func (p *Policy) Get(ctx context.Context, tenant string) (Config, error) {
	o, err := p.store.LoadOverrides(ctx, tenant)
	if err != nil {
		return Config{}, fmt.Errorf("load capacity config: %w", err)
	}
	return p.load(tenant, o), nil
}

// Update merges patch into the stored overrides, persists them and notifies
// the tenant's subscribers with the resulting configuration.
func (p *Policy) Update(ctx context.Context, tenant string, patch Overrides) (Config, error) {
	cur, err := p.store.LoadOverrides(ctx, tenant)
	if err != nil {
		return Config{}, fmt.Errorf("load capacity config: %w", err)
	}
	next := cur.Merge(patch)
	if err := p.store.SaveOverrides(ctx, tenant, next); err != nil {
		return Config{}, fmt.Errorf("save capacity config: %w", err)
	}
	cfg := p.load(tenant, next)
	p.registry.Notify(tenant, cfg)
	return cfg, nil
}

func (p *Policy) Subscribe(tenant string, fn Listener) *Subscription {
	return p.registry.Subscribe(tenant, fn)
}

func (p *Policy) load(tenant string, o Overrides) Config {
	cfg, coerced := Load(o)
	if len(coerced) > 0 {
		p.log.Warn("capacity config fields replaced by defaults",
			zap.String("tenant", tenant),
			zap.Strings("fields", coerced),
		)
	}
	return cfg
}
