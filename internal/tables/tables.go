// Package tables picks physical tables for a booking and checks them
// against the bookings already assigned to them. Every function is pure over
// the table and reservation snapshots the caller passes in.
package tables

import (
	"sort"

	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/timemath"
)

const maxAlternatives = 2

// Request describes the booking a table is wanted for. ExcludeID names a
// reservation to ignore, normally the one being re-seated.
type Request struct {
	Tenant    string
	Date      string
	Time      string
	PartySize int
	ExcludeID string
}

// ListAvailable returns the tenant's tables that can seat the party at the
// slot-rounded requested time, smallest first and by name on equal size.
// An unparseable time yields no tables.
func ListAvailable(cfg capacity.Config, req Request, tables []reservation.Table, bookings []reservation.Reservation) []reservation.Table {
	raw, ok := timemath.ParseTimeToMinutes(req.Time)
	if !ok {
		return []reservation.Table{}
	}
	return availableAt(cfg, req, cfg.Round(raw), tables, bookings)
}

// PickForReservation returns the best table from ListAvailable.
func PickForReservation(cfg capacity.Config, req Request, tables []reservation.Table, bookings []reservation.Reservation) (reservation.Table, bool) {
	free := ListAvailable(cfg, req, tables, bookings)
	if len(free) == 0 {
		return reservation.Table{}, false
	}
	return free[0], true
}

// SuggestAlternativeTimesByTables runs the nearest-slot search of the
// availability engine, but a candidate only counts when some table can take
// the party. The search stays in the shift containing the requested time;
// outside every shift it spans all of them.
func SuggestAlternativeTimesByTables(cfg capacity.Config, req Request, tables []reservation.Table, bookings []reservation.Reservation) []availability.Alternative {
	alts := []availability.Alternative{}
	raw, ok := timemath.ParseTimeToMinutes(req.Time)
	if !ok {
		return alts
	}
	t := cfg.Round(raw)

	windows := cfg.ShiftWindows()
	if shift, ok := cfg.ShiftAt(t); ok {
		windows = []timemath.Window{shift}
	}

	seen := make(map[int]bool)
	var fitting []int
	for _, w := range windows {
		for _, c := range availability.ShiftSlots(cfg, w) {
			if c == t || seen[c] {
				continue
			}
			seen[c] = true
			if len(availableAt(cfg, req, c, tables, bookings)) > 0 {
				fitting = append(fitting, c)
			}
		}
	}
	for _, c := range availability.ClosestFirst(fitting, t, maxAlternatives) {
		alts = append(alts, availability.Alternative{Date: req.Date, Time: timemath.MinutesToHHMM(c)})
	}
	return alts
}

func availableAt(cfg capacity.Config, req Request, start int, tables []reservation.Table, bookings []reservation.Reservation) []reservation.Table {
	want := cfg.BookingWindow(start)
	busy := busyTables(cfg, req, want, bookings)

	out := []reservation.Table{}
	for _, t := range tables {
		if t.TenantID != req.Tenant || t.Status == reservation.TableBlocked {
			continue
		}
		if t.Seats() < req.PartySize || busy[t.ID] {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Seats() != out[j].Seats() {
			return out[i].Seats() < out[j].Seats()
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// busyTables marks every table holding an active booking whose window
// overlaps want.
func busyTables(cfg capacity.Config, req Request, want timemath.Window, bookings []reservation.Reservation) map[string]bool {
	busy := make(map[string]bool)
	for _, r := range bookings {
		if r.TableID == nil || !r.IsActive() || r.TenantID != req.Tenant || r.Date != req.Date {
			continue
		}
		if req.ExcludeID != "" && r.ID == req.ExcludeID {
			continue
		}
		start, ok := timemath.ParseTimeToMinutes(r.Time)
		if !ok {
			continue
		}
		if cfg.BookingWindow(start).Overlaps(want) {
			busy[*r.TableID] = true
		}
	}
	return busy
}
