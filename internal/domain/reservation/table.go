package reservation

type TableKind string

const (
	KindTable TableKind = "table"
	KindStool TableKind = "stool"
)

type TableStatus string

const (
	TableFree     TableStatus = "free"
	TableOccupied TableStatus = "occupied"
	TableReserved TableStatus = "reserved"
	TableBlocked  TableStatus = "blocked"
)

// Table is a physical seat or table. Status is advisory only; availability
// math never looks at it except to skip blocked tables.
type Table struct {
	ID       string      `json:"id"`
	TenantID string      `json:"tenant_id"`
	Name     string      `json:"name"`
	Capacity int         `json:"capacity"`
	Kind     TableKind   `json:"kind"`
	Status   TableStatus `json:"status"`
	Zone     string      `json:"zone"`
}

// Seats returns the effective capacity: a stool always seats one.
func (t Table) Seats() int {
	if t.Kind == KindStool {
		return 1
	}
	return t.Capacity
}
