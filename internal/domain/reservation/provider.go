package reservation

import "context"

// Store is the reservation collaborator. The engine never deletes; Cancel is
// a status transition.
type Store interface {
	ListActiveByDate(ctx context.Context, tenant, date string) ([]Reservation, error)
	ListActiveByPhone(ctx context.Context, tenant, phone string) ([]Reservation, error)
	GetByID(ctx context.Context, tenant, id string) (Reservation, error)
	Create(ctx context.Context, tenant string, in NewReservation) (Reservation, error)
	Update(ctx context.Context, tenant, id string, p Patch) (Reservation, error)
	Cancel(ctx context.Context, tenant, id string) (bool, error)
}

// Lister is the read-only slice of Store the availability engine needs.
type Lister interface {
	ListActiveByDate(ctx context.Context, tenant, date string) ([]Reservation, error)
}

// TableStore lists a tenant's tables. Writes belong to the admin surface.
type TableStore interface {
	ListTables(ctx context.Context, tenant string) ([]Table, error)
}
