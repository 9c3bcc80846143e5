// Package reldate turns the date phrases callers type ("tomorrow", "viernes",
// "25/12") into ISO calendar dates. Resolution is always against an explicit
// reference instant, never the wall clock.
package reldate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/example/tablebook/internal/timemath"
)

var ErrUnrecognized = errors.New("unrecognized date")

var numeric = regexp.MustCompile(`^(\d{1,2})[/.-](\d{1,2})(?:[/.-](\d{4}|\d{2}))?$`)

var offsets = map[string]int{
	"today":                  0,
	"hoy":                    0,
	"tomorrow":               1,
	"manana":                 1,
	"day after tomorrow":     2,
	"the day after tomorrow": 2,
	"pasado manana":          2,
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

// Resolve returns input as YYYY-MM-DD. Relative phrases and weekday names are
// taken relative to ref's calendar date in ref's location; a weekday means
// its next occurrence, ref's own day included. D/M without a year lands on
// ref's year, or the next one when that date has already passed.
func Resolve(input string, ref time.Time) (string, error) {
	s := fold(input)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrUnrecognized)
	}
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	if n, ok := offsets[s]; ok {
		return timemath.DateOf(today.AddDate(0, 0, n)), nil
	}
	if wd, ok := weekdays[strings.TrimPrefix(strings.TrimPrefix(s, "next "), "el ")]; ok {
		n := (int(wd) - int(today.Weekday()) + 7) % 7
		return timemath.DateOf(today.AddDate(0, 0, n)), nil
	}
	if t, ok := timemath.ParseDate(s); ok {
		return timemath.DateOf(t), nil
	}
	if m := numeric.FindStringSubmatch(s); m != nil {
		return numericDate(m, today)
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognized, input)
}

func numericDate(m []string, today time.Time) (string, error) {
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	if m[3] != "" {
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		t, ok := calendar(year, month, day)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnrecognized, m[0])
		}
		return timemath.DateOf(t), nil
	}

	t, ok := calendar(today.Year(), month, day)
	if !ok || t.Before(today) {
		t, ok = calendar(today.Year()+1, month, day)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnrecognized, m[0])
	}
	return timemath.DateOf(t), nil
}

// calendar rejects dates time.Date would normalize, such as 31/4.
func calendar(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// fold lowercases, strips diacritics and collapses whitespace.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}
