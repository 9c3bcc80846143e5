package availability

type Status string

const (
	StatusAvailable    Status = "available"
	StatusNotAvailable Status = "not_available"
)

// Reason explains a rejection. Exactly one is set on every not_available result.
type Reason string

const (
	ReasonClosed     Reason = "closed"
	ReasonMaxParty   Reason = "max_party"
	ReasonOutOfHours Reason = "out_of_hours"
	ReasonTurnEnd    Reason = "turn_end"
	ReasonCapacity   Reason = "capacity"
)

const (
	maxAlternatives = 2
	lookaheadDays   = 7
)

// Alternative is a concrete proposal the caller can offer instead.
type Alternative struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Result is the outcome of Check. NormalizedTime is set only when slot
// rounding moved the requested time.
type Result struct {
	Status         Status        `json:"status"`
	Reason         Reason        `json:"reason,omitempty"`
	Alternatives   []Alternative `json:"alternatives"`
	NormalizedTime string        `json:"normalized_time,omitempty"`
}

func (r Result) Available() bool { return r.Status == StatusAvailable }
