// Package booking executes the reservation actions an upstream assistant or
// admin surface decides on, re-validating against live state before every
// write.
package booking

import (
	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/domain/reservation"
)

type ActionType string

const (
	ActionCheckAvailability ActionType = "check_availability"
	ActionCreate            ActionType = "create_reservation"
	ActionUpdate            ActionType = "update_reservation"
	ActionCancel            ActionType = "cancel_reservation"
	ActionNone              ActionType = "none"
)

// Action is one decided step. Empty strings and a zero PartySize mean the
// field was not supplied.
type Action struct {
	Type          ActionType `json:"action"`
	Date          string     `json:"date,omitempty"`
	Time          string     `json:"time,omitempty"`
	PartySize     int        `json:"party_size,omitempty"`
	Name          string     `json:"name,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	TableID       *string    `json:"table_id,omitempty"`
	ReservationID string     `json:"reservation_id,omitempty"`
}

// Failure classifies an unsuccessful Result that the engine produced itself.
type Failure string

const (
	FailureValidation Failure = "validation"
	FailureNotFound   Failure = "not_found"
	FailurePolicy     Failure = "policy"
)

type Result struct {
	Success        bool                       `json:"success"`
	Data           *reservation.Reservation   `json:"data,omitempty"`
	Availability   *availability.Result       `json:"availability,omitempty"`
	Reason         availability.Reason        `json:"reason,omitempty"`
	Alternatives   []availability.Alternative `json:"alternatives,omitempty"`
	NormalizedTime string                     `json:"normalized_time,omitempty"`
	Message        string                     `json:"message,omitempty"`
	Failure        Failure                    `json:"failure,omitempty"`
}

// Stats summarizes a caller's upcoming bookings.
type Stats struct {
	Count        int                       `json:"count"`
	HasActive    bool                      `json:"has_active"`
	Reservations []reservation.Reservation `json:"reservations"`
}

func invalid(msg string) Result {
	return Result{Failure: FailureValidation, Message: msg}
}

func notFound(id string) Result {
	return Result{Failure: FailureNotFound, Message: "reservation " + id + " not found"}
}

func rejected(res availability.Result) Result {
	return Result{
		Failure:        FailurePolicy,
		Availability:   &res,
		Reason:         res.Reason,
		Alternatives:   res.Alternatives,
		NormalizedTime: res.NormalizedTime,
		Message:        "not available: " + string(res.Reason),
	}
}
