package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/lock"
	"github.com/example/tablebook/internal/reldate"
	"github.com/example/tablebook/internal/timemath"
)

// Checker is the availability decision the engine re-runs before writes.
type Checker interface {
	Check(ctx context.Context, tenant, date, at string, partySize int, excludeID string) (availability.Result, error)
}

// Locker serializes commits for one key. See package lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Scope identifies who is acting. A zero Now means the engine clock.
type Scope struct {
	Tenant string
	Phone  string
	Now    time.Time
}

type Engine struct {
	store   reservation.Store
	configs availability.ConfigSource
	checker Checker
	locker  Locker
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Engine)

// WithLocker makes create and update hold the (tenant, date) lock across
// re-validation and write.
func WithLocker(l Locker) Option { return func(e *Engine) { e.locker = l } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithLogger(log *zap.Logger) Option { return func(e *Engine) { e.log = log } }

func NewEngine(store reservation.Store, configs availability.ConfigSource, checker Checker, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		configs: configs,
		checker: checker,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Execute runs one action. Expected outcomes, including validation and
// policy rejections, come back as a Result; the error is reserved for
// storage and lock failures.
func (e *Engine) Execute(ctx context.Context, a Action, s Scope) (Result, error) {
	if s.Tenant == "" {
		return invalid("tenant is required"), nil
	}
	if s.Now.IsZero() {
		s.Now = e.now()
	}
	switch a.Type {
	case ActionCheckAvailability:
		return e.checkAvailability(ctx, a, s)
	case ActionCreate:
		return e.create(ctx, a, s)
	case ActionUpdate:
		return e.update(ctx, a, s)
	case ActionCancel:
		return e.cancel(ctx, a, s)
	case ActionNone:
		return Result{Success: true}, nil
	default:
		return invalid(fmt.Sprintf("unknown action %q", a.Type)), nil
	}
}

func (e *Engine) checkAvailability(ctx context.Context, a Action, s Scope) (Result, error) {
	if missing := required(a, "date", "time", "party_size"); missing != "" {
		return invalid(missing), nil
	}
	date, err := reldate.Resolve(a.Date, s.Now)
	if err != nil {
		return invalid(err.Error()), nil
	}
	res, err := e.checker.Check(ctx, s.Tenant, date, a.Time, a.PartySize, "")
	if err != nil {
		return failed(err)
	}
	return Result{
		Success:        true,
		Availability:   &res,
		Reason:         res.Reason,
		Alternatives:   res.Alternatives,
		NormalizedTime: res.NormalizedTime,
	}, nil
}

func (e *Engine) create(ctx context.Context, a Action, s Scope) (Result, error) {
	if missing := required(a, "date", "time", "party_size", "name"); missing != "" {
		return invalid(missing), nil
	}
	date, err := reldate.Resolve(a.Date, s.Now)
	if err != nil {
		return invalid(err.Error()), nil
	}

	release, err := e.serialize(ctx, s.Tenant, date)
	if err != nil {
		return Result{}, err
	}
	defer release()

	res, err := e.checker.Check(ctx, s.Tenant, date, a.Time, a.PartySize, "")
	if err != nil {
		return failed(err)
	}
	if !res.Available() {
		e.log.Info("create rejected",
			zap.String("tenant", s.Tenant),
			zap.String("date", date),
			zap.String("time", a.Time),
			zap.String("reason", string(res.Reason)),
		)
		return rejected(res), nil
	}

	at := res.NormalizedTime
	if at == "" {
		at = canonical(a.Time)
	}
	rec, err := e.store.Create(ctx, s.Tenant, reservation.NewReservation{
		Name:      a.Name,
		Phone:     s.Phone,
		Date:      date,
		Time:      at,
		PartySize: a.PartySize,
		Notes:     a.Notes,
		TableID:   a.TableID,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create reservation: %w", err)
	}
	e.log.Info("reservation created",
		zap.String("tenant", s.Tenant),
		zap.String("id", rec.ID),
		zap.String("date", rec.Date),
		zap.String("time", rec.Time),
		zap.Int("party_size", rec.PartySize),
	)
	return Result{Success: true, Data: &rec, Availability: &res, NormalizedTime: at}, nil
}

func (e *Engine) update(ctx context.Context, a Action, s Scope) (Result, error) {
	if a.ReservationID == "" {
		return invalid("reservation_id is required"), nil
	}
	cur, err := e.store.GetByID(ctx, s.Tenant, a.ReservationID)
	if reservation.IsNotFound(err) {
		return notFound(a.ReservationID), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("get reservation: %w", err)
	}
	if !cur.IsActive() {
		return invalid("reservation " + cur.ID + " is cancelled"), nil
	}

	var p reservation.Patch
	date, at, party := cur.Date, canonical(cur.Time), cur.PartySize
	if a.Date != "" {
		if date, err = reldate.Resolve(a.Date, s.Now); err != nil {
			return invalid(err.Error()), nil
		}
		p.Date = &date
	}
	if a.Time != "" {
		raw, ok := timemath.ParseTimeToMinutes(a.Time)
		if !ok {
			return invalid(fmt.Sprintf("%s: %q", reservation.ErrInvalidTime, a.Time)), nil
		}
		cfg, err := e.configs.Get(ctx, s.Tenant)
		if err != nil {
			return Result{}, err
		}
		at = timemath.MinutesToHHMM(cfg.Round(raw))
		p.Time = &at
	}
	if a.PartySize != 0 {
		if a.PartySize < 1 {
			return invalid(reservation.ErrInvalidPartySize.Error()), nil
		}
		party = a.PartySize
		p.PartySize = &party
	}
	if a.Name != "" {
		p.Name = &a.Name
	}
	p.Notes = a.Notes
	p.TableID = a.TableID

	var checked *availability.Result
	if date != cur.Date || at != canonical(cur.Time) || party != cur.PartySize {
		release, err := e.serialize(ctx, s.Tenant, date, cur.Date)
		if err != nil {
			return Result{}, err
		}
		defer release()

		res, err := e.checker.Check(ctx, s.Tenant, date, at, party, cur.ID)
		if err != nil {
			return failed(err)
		}
		if !res.Available() {
			return rejected(res), nil
		}
		if res.NormalizedTime != "" {
			at = res.NormalizedTime
		}
		p.Time = &at
		checked = &res
	}

	if a.TableID != nil {
		e.log.Info("table reassigned",
			zap.String("tenant", s.Tenant),
			zap.String("id", cur.ID),
			zap.String("table_id", *a.TableID),
			zap.Bool("table_override", true),
		)
	}
	rec, err := e.store.Update(ctx, s.Tenant, cur.ID, p)
	if reservation.IsNotFound(err) {
		return notFound(cur.ID), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("update reservation: %w", err)
	}
	out := Result{Success: true, Data: &rec, Availability: checked}
	if p.Time != nil {
		out.NormalizedTime = at
	}
	return out, nil
}

func (e *Engine) cancel(ctx context.Context, a Action, s Scope) (Result, error) {
	if a.ReservationID == "" {
		return invalid("reservation_id is required"), nil
	}
	ok, err := e.store.Cancel(ctx, s.Tenant, a.ReservationID)
	if err != nil {
		return Result{}, fmt.Errorf("cancel reservation: %w", err)
	}
	if !ok {
		return notFound(a.ReservationID), nil
	}
	e.log.Info("reservation cancelled", zap.String("tenant", s.Tenant), zap.String("id", a.ReservationID))

	out := Result{Success: true, Message: "reservation cancelled"}
	if rec, err := e.store.GetByID(ctx, s.Tenant, a.ReservationID); err == nil {
		out.Data = &rec
	}
	return out, nil
}

// GetStats lists the phone's active reservations starting at or after now,
// soonest first.
func (e *Engine) GetStats(ctx context.Context, tenant, phone string, now time.Time) (Stats, error) {
	stats := Stats{Reservations: []reservation.Reservation{}}
	if phone == "" {
		return stats, nil
	}
	if now.IsZero() {
		now = e.now()
	}
	list, err := e.store.ListActiveByPhone(ctx, tenant, phone)
	if err != nil {
		return Stats{}, fmt.Errorf("list reservations: %w", err)
	}

	today, clock := timemath.DateOf(now), now.Format("15:04")
	for _, r := range list {
		if r.Date > today || (r.Date == today && canonical(r.Time) >= clock) {
			stats.Reservations = append(stats.Reservations, r)
		}
	}
	sort.SliceStable(stats.Reservations, func(i, j int) bool {
		a, b := stats.Reservations[i], stats.Reservations[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return canonical(a.Time) < canonical(b.Time)
	})
	stats.Count = len(stats.Reservations)
	stats.HasActive = stats.Count > 0
	return stats, nil
}

// serialize takes the lock for every distinct date in a fixed order so two
// moves between the same days cannot deadlock.
func (e *Engine) serialize(ctx context.Context, tenant string, dates ...string) (func(), error) {
	if e.locker == nil {
		return func() {}, nil
	}
	keys := make([]string, 0, len(dates))
	seen := make(map[string]bool)
	for _, d := range dates {
		k := lock.Key(tenant, d)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	held := make([]func(), 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}
	for _, k := range keys {
		unlock, err := e.locker.Lock(ctx, k)
		if err != nil {
			release()
			return nil, fmt.Errorf("lock %s: %w", k, err)
		}
		held = append(held, unlock)
	}
	return release, nil
}

// failed turns a checker error into a validation Result when the input was
// at fault and propagates anything else.
func failed(err error) (Result, error) {
	if reservation.IsValidation(err) {
		return invalid(err.Error()), nil
	}
	return Result{}, err
}

func required(a Action, fields ...string) string {
	var missing []string
	for _, f := range fields {
		switch {
		case f == "date" && a.Date == "",
			f == "time" && a.Time == "",
			f == "party_size" && a.PartySize == 0,
			f == "name" && strings.TrimSpace(a.Name) == "":
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return "missing required fields: " + strings.Join(missing, ", ")
}

// canonical zero-pads a stored or supplied HH:MM. Unparseable input is
// returned unchanged.
func canonical(hhmm string) string {
	if m, ok := timemath.ParseTimeToMinutes(hhmm); ok {
		return timemath.MinutesToHHMM(m)
	}
	return hhmm
}
