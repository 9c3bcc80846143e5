package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/booking"
	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/config"
	"github.com/example/tablebook/internal/db"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/lock"
	"github.com/example/tablebook/internal/logger"
	"github.com/example/tablebook/internal/migrate"
	"github.com/example/tablebook/internal/store/memory"
	"github.com/example/tablebook/internal/store/postgres"
)

// app is the wired process: stores picked from config, engines on top.
type app struct {
	cfg  config.Config
	log  *zap.Logger
	db   *db.DB
	done []func()

	policy       *capacity.Policy
	reservations reservation.Store
	tables       reservation.TableStore
	tableRepo    *postgres.TableRepo
	availability *availability.Engine
	bookings     *booking.Engine
}

// openApp uses PostgreSQL when DATABASE_URL is set and in-process stores
// otherwise. REDIS_ADDR switches commit locking from in-process to Redis.
func openApp(ctx context.Context, migrateUp bool) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.DevMode})}
	a.done = append(a.done, func() { _ = a.log.Sync() })

	var capStore capacity.Store
	if cfg.DatabaseURL != "" {
		d, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = d
		a.done = append(a.done, d.Close)
		if err := d.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if migrateUp {
			if err := migrate.Up(ctx, d, a.log); err != nil {
				a.Close()
				return nil, err
			}
		}
		capStore = postgres.NewCapacityRepo(d)
		a.reservations = postgres.NewReservationRepo(d)
		a.tableRepo = postgres.NewTableRepo(d)
		a.tables = a.tableRepo
	} else {
		a.log.Warn("DATABASE_URL not set, using in-memory stores")
		capStore = memory.NewCapacityStore()
		a.reservations = memory.NewReservationStore()
		a.tables = memory.NewTableStore()
	}

	var locker booking.Locker = lock.NewLocal()
	if cfg.RedisAddr != "" {
		client, err := lock.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.done = append(a.done, func() { _ = client.Close() })
		locker = lock.NewRedis(client, cfg.LockTTL, a.log)
	}

	a.policy = capacity.NewPolicy(capStore, nil, a.log)
	a.availability = availability.NewEngine(a.policy, a.reservations, a.log)
	a.bookings = booking.NewEngine(a.reservations, a.policy, a.availability,
		booking.WithLocker(locker),
		booking.WithLogger(a.log),
	)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.done) - 1; i >= 0; i-- {
		a.done[i]()
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
