package capacity

import (
	"math"

	"github.com/example/tablebook/internal/timemath"
)

// Overrides is what a tenant has persisted. A nil field means "use the
// default"; a nil slice likewise, while an empty slice is an explicit value.
type Overrides struct {
	TotalCapacity       *float64 `json:"total_capacity,omitempty"`
	MaxPartySize        *float64 `json:"max_party_size,omitempty"`
	StandardDurationMin *float64 `json:"standard_duration_min,omitempty"`
	BufferMin           *float64 `json:"buffer_min,omitempty"`
	SlotIntervalMin     *float64 `json:"slot_interval_min,omitempty"`
	SlotRounding        *string  `json:"slot_rounding,omitempty"`
	Shifts              []Shift  `json:"shifts,omitempty"`
	ClosedDates         []string `json:"closed_dates,omitempty"`
}

// Merge lays patch over o field by field.
func (o Overrides) Merge(patch Overrides) Overrides {
	if patch.TotalCapacity != nil {
		o.TotalCapacity = patch.TotalCapacity
	}
	if patch.MaxPartySize != nil {
		o.MaxPartySize = patch.MaxPartySize
	}
	if patch.StandardDurationMin != nil {
		o.StandardDurationMin = patch.StandardDurationMin
	}
	if patch.BufferMin != nil {
		o.BufferMin = patch.BufferMin
	}
	if patch.SlotIntervalMin != nil {
		o.SlotIntervalMin = patch.SlotIntervalMin
	}
	if patch.SlotRounding != nil {
		o.SlotRounding = patch.SlotRounding
	}
	if patch.Shifts != nil {
		o.Shifts = patch.Shifts
	}
	if patch.ClosedDates != nil {
		o.ClosedDates = patch.ClosedDates
	}
	return o
}

// Load applies o over Defaults and returns the result together with the
// names of the fields that were present but had to be replaced. Load never
// fails: a bad value only costs the tenant its override.
func Load(o Overrides) (Config, []string) {
	cfg := Defaults()
	var coerced []string

	num := func(name string, v *float64, min, max int, dst *int) {
		if v == nil {
			return
		}
		f := *v
		if math.IsNaN(f) || math.IsInf(f, 0) {
			coerced = append(coerced, name)
			return
		}
		n := int(math.Trunc(f))
		if n < min || n > max {
			coerced = append(coerced, name)
			return
		}
		*dst = n
	}
	num("total_capacity", o.TotalCapacity, 0, math.MaxInt32, &cfg.TotalCapacity)
	num("max_party_size", o.MaxPartySize, 1, math.MaxInt32, &cfg.MaxPartySize)
	num("standard_duration_min", o.StandardDurationMin, 1, timemath.MinutesPerDay, &cfg.StandardDurationMin)
	num("buffer_min", o.BufferMin, 0, timemath.MinutesPerDay, &cfg.BufferMin)
	num("slot_interval_min", o.SlotIntervalMin, 1, timemath.MinutesPerDay, &cfg.SlotIntervalMin)

	if o.SlotRounding != nil {
		if r := timemath.Rounding(*o.SlotRounding); r.Valid() {
			cfg.SlotRounding = r
		} else {
			coerced = append(coerced, "slot_rounding")
		}
	}

	if o.Shifts != nil {
		valid := make([]Shift, 0, len(o.Shifts))
		for _, s := range o.Shifts {
			w, ok := s.Window()
			if !ok {
				continue
			}
			valid = append(valid, Shift{Start: timemath.MinutesToHHMM(w.Start), End: timemath.MinutesToHHMM(w.End)})
		}
		if len(valid) != len(o.Shifts) {
			coerced = append(coerced, "shifts")
		}
		if len(valid) > 0 {
			cfg.Shifts = valid
		}
	}

	if o.ClosedDates != nil {
		dates := make([]string, 0, len(o.ClosedDates))
		for _, d := range o.ClosedDates {
			if _, ok := timemath.ParseDate(d); ok {
				dates = append(dates, d)
			}
		}
		if len(dates) != len(o.ClosedDates) {
			coerced = append(coerced, "closed_dates")
		}
		cfg.ClosedDates = dates
	}

	return cfg, coerced
}
