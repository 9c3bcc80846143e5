package timemath

// Window is a half-open [Start, End) span in minutes of day.
type Window struct {
	Start int
	End   int
}

// BookingWindow is the span a booking starting at start occupies:
// the sitting itself plus the turnover buffer.
func BookingWindow(start, durationMin, bufferMin int) Window {
	return Window{Start: start, End: start + durationMin + bufferMin}
}

// Overlaps reports whether the two half-open spans share any minute.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t int) bool {
	return w.Start <= t && t < w.End
}
