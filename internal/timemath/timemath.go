// Package timemath parses, formats and rounds minutes-of-day values.
package timemath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60
	lastMinute    = MinutesPerDay - 1
)

// Rounding selects how a time is snapped onto the slot grid.
type Rounding string

const (
	RoundNearest Rounding = "nearest"
	RoundFloor   Rounding = "floor"
	RoundCeil    Rounding = "ceil"
)

// Valid reports whether r is one of the known modes.
func (r Rounding) Valid() bool {
	switch r {
	case RoundNearest, RoundFloor, RoundCeil:
		return true
	}
	return false
}

var hhmm = regexp.MustCompile(`^(\d{1,2})(?::(\d{1,2}))?$`)

// ParseTimeToMinutes reads "H", "HH", "H:MM" or "HH:MM". ok is false for
// anything else, including hours above 23 or minutes above 59.
func ParseTimeToMinutes(s string) (minutes int, ok bool) {
	m := hhmm.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	mm := 0
	if m[2] != "" {
		mm, _ = strconv.Atoi(m[2])
	}
	if h > 23 || mm > 59 {
		return 0, false
	}
	return h*60 + mm, true
}

// MinutesToHHMM clamps m into a single day and formats it zero-padded.
func MinutesToHHMM(m int) string {
	if m < 0 {
		m = 0
	}
	if m > lastMinute {
		m = lastMinute
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatMinutes is MinutesToHHMM for fractional values, rounded to the
// nearest whole minute first.
func FormatMinutes(m float64) string {
	if math.IsNaN(m) {
		return MinutesToHHMM(0)
	}
	if math.IsInf(m, 1) {
		return MinutesToHHMM(lastMinute)
	}
	if math.IsInf(m, -1) {
		return MinutesToHHMM(0)
	}
	return MinutesToHHMM(int(math.Round(m)))
}

// RoundToSlot snaps m onto the interval grid. A non-positive interval
// returns m unchanged; aligned values are fixed points for every mode.
func RoundToSlot(m, interval int, mode Rounding) int {
	if interval <= 0 {
		return m
	}
	q := float64(m) / float64(interval)
	switch mode {
	case RoundFloor:
		q = math.Floor(q)
	case RoundCeil:
		q = math.Ceil(q)
	default:
		q = math.Floor(q + 0.5)
	}
	return int(q) * interval
}
