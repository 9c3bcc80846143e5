package reservation

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Reservation is a booking held by one party at one tenant. Date is an ISO
// calendar date and Time an HH:MM start, both in the restaurant's local time.
type Reservation struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	PartySize int       `json:"party_size"`
	Notes     *string   `json:"notes,omitempty"`
	TableID   *string   `json:"table_id,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Reservation) IsActive() bool { return r.Status == StatusActive }

// NewReservation holds the caller-supplied fields of a reservation to create.
type NewReservation struct {
	Name      string
	Phone     string
	Date      string
	Time      string
	PartySize int
	Notes     *string
	TableID   *string
}

// Patch lists the fields to change on an existing reservation; nil means keep.
type Patch struct {
	Name      *string
	Date      *string
	Time      *string
	PartySize *int
	Notes     *string
	TableID   *string
}

func (p Patch) Apply(r Reservation) Reservation {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.Time != nil {
		r.Time = *p.Time
	}
	if p.PartySize != nil {
		r.PartySize = *p.PartySize
	}
	if p.Notes != nil {
		r.Notes = p.Notes
	}
	if p.TableID != nil {
		r.TableID = p.TableID
	}
	return r
}
