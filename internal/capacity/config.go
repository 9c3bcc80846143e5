// Package capacity holds per-tenant seating policy: shifts, capacity,
// durations, slot grid and closed dates.
package capacity

import (
	"github.com/example/tablebook/internal/timemath"
)

// Shift is an open-for-business interval, half-open [Start, End).
type Shift struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Window returns the shift in minutes of day. ok is false when either bound
// does not parse or the shift is empty.
func (s Shift) Window() (timemath.Window, bool) {
	start, ok := timemath.ParseTimeToMinutes(s.Start)
	if !ok {
		return timemath.Window{}, false
	}
	end, ok := timemath.ParseTimeToMinutes(s.End)
	if !ok || end <= start {
		return timemath.Window{}, false
	}
	return timemath.Window{Start: start, End: end}, true
}

// Config is a complete, sane tenant policy. Obtain one through Load.
type Config struct {
	TotalCapacity       int               `json:"total_capacity"`
	MaxPartySize        int               `json:"max_party_size"`
	StandardDurationMin int               `json:"standard_duration_min"`
	BufferMin           int               `json:"buffer_min"`
	SlotIntervalMin     int               `json:"slot_interval_min"`
	SlotRounding        timemath.Rounding `json:"slot_rounding"`
	Shifts              []Shift           `json:"shifts"`
	ClosedDates         []string          `json:"closed_dates"`
}

func Defaults() Config {
	return Config{
		TotalCapacity:       40,
		MaxPartySize:        8,
		StandardDurationMin: 90,
		BufferMin:           15,
		SlotIntervalMin:     15,
		SlotRounding:        timemath.RoundNearest,
		Shifts: []Shift{
			{Start: "13:00", End: "16:00"},
			{Start: "20:00", End: "23:30"},
		},
		ClosedDates: []string{},
	}
}

func (c Config) IsClosed(date string) bool {
	for _, d := range c.ClosedDates {
		if d == date {
			return true
		}
	}
	return false
}

// ShiftAt returns the first shift whose window contains t.
func (c Config) ShiftAt(t int) (timemath.Window, bool) {
	for _, s := range c.Shifts {
		w, ok := s.Window()
		if ok && w.Contains(t) {
			return w, true
		}
	}
	return timemath.Window{}, false
}

// ShiftWindows returns every shift in configured order.
func (c Config) ShiftWindows() []timemath.Window {
	out := make([]timemath.Window, 0, len(c.Shifts))
	for _, s := range c.Shifts {
		if w, ok := s.Window(); ok {
			out = append(out, w)
		}
	}
	return out
}

// Round snaps a minutes-of-day value onto the tenant's slot grid. Values
// that would round past midnight land on the day's last slot.
func (c Config) Round(m int) int {
	t := timemath.RoundToSlot(m, c.SlotIntervalMin, c.SlotRounding)
	if t >= timemath.MinutesPerDay && c.SlotIntervalMin > 0 {
		t = (timemath.MinutesPerDay - 1) / c.SlotIntervalMin * c.SlotIntervalMin
	}
	return t
}

// BookingWindow is the span occupied by a booking starting at start.
func (c Config) BookingWindow(start int) timemath.Window {
	return timemath.BookingWindow(start, c.StandardDurationMin, c.BufferMin)
}
