// Package availability decides whether a party can be seated at a given
// date and time and, when it cannot, proposes nearby alternatives.
package availability

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/timemath"
)

// ConfigSource yields a complete tenant policy.
type ConfigSource interface {
	Get(ctx context.Context, tenant string) (capacity.Config, error)
}

type Engine struct {
	configs      ConfigSource
	reservations reservation.Lister
	log          *zap.Logger
}

func NewEngine(configs ConfigSource, reservations reservation.Lister, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{configs: configs, reservations: reservations, log: log}
}

// Check evaluates the request against the tenant's policy and bookings. The
// first failing rule decides the result: closed date, party size, opening
// hours, end of shift, then seated capacity. excludeID drops one existing
// reservation from the load, which lets an update be checked against
// everything but itself.
func (e *Engine) Check(ctx context.Context, tenant, date, at string, partySize int, excludeID string) (Result, error) {
	if _, ok := timemath.ParseDate(date); !ok {
		return Result{}, fmt.Errorf("%w: %q", reservation.ErrInvalidDate, date)
	}
	raw, ok := timemath.ParseTimeToMinutes(at)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", reservation.ErrInvalidTime, at)
	}
	if partySize < 1 {
		return Result{}, reservation.ErrInvalidPartySize
	}
	cfg, err := e.configs.Get(ctx, tenant)
	if err != nil {
		return Result{}, err
	}

	q := &query{
		ctx:     ctx,
		tenant:  tenant,
		cfg:     cfg,
		party:   partySize,
		exclude: excludeID,
		lister:  e.reservations,
		days:    make(map[string][]reservation.Reservation),
	}
	res, err := q.evaluate(date, raw)
	if err != nil {
		return Result{}, err
	}
	e.log.Debug("availability checked",
		zap.String("tenant", tenant),
		zap.String("date", date),
		zap.String("time", at),
		zap.Int("party_size", partySize),
		zap.String("status", string(res.Status)),
		zap.String("reason", string(res.Reason)),
		zap.Int("alternatives", len(res.Alternatives)),
	)
	return res, nil
}

type query struct {
	ctx     context.Context
	tenant  string
	cfg     capacity.Config
	party   int
	exclude string
	lister  reservation.Lister
	days    map[string][]reservation.Reservation
}

func (q *query) evaluate(date string, raw int) (Result, error) {
	t := q.cfg.Round(raw)
	res := Result{Alternatives: []Alternative{}}
	if t != raw {
		res.NormalizedTime = timemath.MinutesToHHMM(t)
	}

	reject := func(reason Reason, alts []Alternative) Result {
		res.Status = StatusNotAvailable
		res.Reason = reason
		if alts != nil {
			res.Alternatives = alts
		}
		return res
	}

	if q.cfg.IsClosed(date) {
		alts, err := q.sameTimeLater(date, t)
		if err != nil {
			return Result{}, err
		}
		return reject(ReasonClosed, alts), nil
	}

	if q.party > q.cfg.MaxPartySize {
		return reject(ReasonMaxParty, nil), nil
	}

	shift, ok := q.cfg.ShiftAt(t)
	if !ok {
		alts, err := q.openSlots(date, t)
		if err != nil {
			return Result{}, err
		}
		return reject(ReasonOutOfHours, alts), nil
	}

	if t+q.cfg.StandardDurationMin > shift.End {
		alts, err := q.nearest(date, shift, t)
		if err != nil {
			return Result{}, err
		}
		return reject(ReasonTurnEnd, alts), nil
	}

	fits, err := q.fits(date, t)
	if err != nil {
		return Result{}, err
	}
	if !fits {
		alts, err := q.nearest(date, shift, t)
		if err != nil {
			return Result{}, err
		}
		return reject(ReasonCapacity, alts), nil
	}

	res.Status = StatusAvailable
	return res, nil
}

// sameTimeLater proposes the same time on the next open days.
func (q *query) sameTimeLater(date string, t int) ([]Alternative, error) {
	var alts []Alternative
	for i := 1; i <= lookaheadDays && len(alts) < maxAlternatives; i++ {
		d := timemath.AddDays(date, i)
		if q.cfg.IsClosed(d) {
			continue
		}
		ok, err := q.fits(d, t)
		if err != nil {
			return nil, err
		}
		if ok {
			alts = append(alts, Alternative{Date: d, Time: timemath.MinutesToHHMM(t)})
		}
	}
	return alts, nil
}

// openSlots proposes the first bookable slots at or after t on date, then
// from the start of service on the following open days.
func (q *query) openSlots(date string, t int) ([]Alternative, error) {
	starts := slotStarts(q.cfg)
	var alts []Alternative
	collect := func(d string, from int) error {
		for _, c := range starts {
			if len(alts) == maxAlternatives {
				return nil
			}
			if c < from {
				continue
			}
			ok, err := q.fits(d, c)
			if err != nil {
				return err
			}
			if ok {
				alts = append(alts, Alternative{Date: d, Time: timemath.MinutesToHHMM(c)})
			}
		}
		return nil
	}

	if err := collect(date, t); err != nil {
		return nil, err
	}
	for i := 1; i <= lookaheadDays && len(alts) == 0; i++ {
		d := timemath.AddDays(date, i)
		if q.cfg.IsClosed(d) {
			continue
		}
		if err := collect(d, 0); err != nil {
			return nil, err
		}
	}
	return alts, nil
}

// nearest is the in-shift search: every slot that still ends inside the
// shift, other than t itself, that has room, closest to t first and earlier
// first on ties.
func (q *query) nearest(date string, shift timemath.Window, t int) ([]Alternative, error) {
	var fitting []int
	for _, c := range ShiftSlots(q.cfg, shift) {
		if c == t {
			continue
		}
		ok, err := q.fits(date, c)
		if err != nil {
			return nil, err
		}
		if ok {
			fitting = append(fitting, c)
		}
	}
	fitting = ClosestFirst(fitting, t, maxAlternatives)
	alts := make([]Alternative, 0, len(fitting))
	for _, c := range fitting {
		alts = append(alts, Alternative{Date: date, Time: timemath.MinutesToHHMM(c)})
	}
	return alts, nil
}

func (q *query) fits(date string, start int) (bool, error) {
	list, err := q.day(date)
	if err != nil {
		return false, err
	}
	load := Load(q.cfg, list, date, q.cfg.BookingWindow(start), q.exclude)
	return q.cfg.TotalCapacity-load >= q.party, nil
}

func (q *query) day(date string) ([]reservation.Reservation, error) {
	if list, ok := q.days[date]; ok {
		return list, nil
	}
	list, err := q.lister.ListActiveByDate(q.ctx, q.tenant, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations for %s: %w", date, err)
	}
	q.days[date] = list
	return list, nil
}

// Load sums the party sizes of active reservations on date whose window
// overlaps w, skipping excludeID.
func Load(cfg capacity.Config, list []reservation.Reservation, date string, w timemath.Window, excludeID string) int {
	load := 0
	for _, r := range list {
		if !r.IsActive() || r.Date != date || (excludeID != "" && r.ID == excludeID) {
			continue
		}
		start, ok := timemath.ParseTimeToMinutes(r.Time)
		if !ok {
			continue
		}
		if cfg.BookingWindow(start).Overlaps(w) {
			load += r.PartySize
		}
	}
	return load
}

// ShiftSlots lists the slot starts in shift that leave room for a full sitting.
func ShiftSlots(cfg capacity.Config, shift timemath.Window) []int {
	var out []int
	for c := shift.Start; c+cfg.StandardDurationMin <= shift.End; c += cfg.SlotIntervalMin {
		out = append(out, c)
	}
	return out
}

// ClosestFirst orders candidates by distance from t, earlier first on ties,
// and keeps at most limit of them.
func ClosestFirst(candidates []int, t, limit int) []int {
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := abs(candidates[i]-t), abs(candidates[j]-t)
		if di != dj {
			return di < dj
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func slotStarts(cfg capacity.Config) []int {
	seen := make(map[int]bool)
	var out []int
	for _, w := range cfg.ShiftWindows() {
		for _, c := range ShiftSlots(cfg, w) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Ints(out)
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
