package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/example/tablebook/internal/availability"
	"github.com/example/tablebook/internal/capacity"
	"github.com/example/tablebook/internal/domain/reservation"
	"github.com/example/tablebook/internal/lock"
	"github.com/example/tablebook/internal/store/memory"
)

const (
	tenant = "casa-lola"
	phone  = "+34600111222"
)

// Monday 2026-10-19, noon.
var now = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)

func num(v float64) *float64 { return &v }
func str(s string) *string     { return &s }

// countingChecker records how often the engine re-validates.
type countingChecker struct {
	mu    sync.Mutex
	next  Checker
	calls int
}

func (c *countingChecker) Check(ctx context.Context, tenant, date, at string, party int, excludeID string) (availability.Result, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.next.Check(ctx, tenant, date, at, party, excludeID)
}

type fixture struct {
	engine  *Engine
	res     *memory.ReservationStore
	checker *countingChecker
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T, o capacity.Overrides, opts ...Option) fixture {
	t.Helper()
	policy := capacity.NewPolicy(memory.NewCapacityStore(), nil, nil)
	_, err := policy.Update(context.Background(), tenant, o)
	require.NoError(t, err)

	res := memory.NewReservationStore()
	checker := &countingChecker{next: availability.NewEngine(policy, res, nil)}
	core, logs := observer.New(zapcore.InfoLevel)
	opts = append([]Option{WithLogger(zap.New(core)), WithClock(func() time.Time { return now })}, opts...)
	return fixture{
		engine:  NewEngine(res, policy, checker, opts...),
		res:     res,
		checker: checker,
		logs:    logs,
	}
}

func (f fixture) exec(t *testing.T, a Action) Result {
	t.Helper()
	r, err := f.engine.Execute(context.Background(), a, Scope{Tenant: tenant, Phone: phone})
	require.NoError(t, err)
	return r
}

func (f fixture) seed(id, date, at string, party int) reservation.Reservation {
	r := reservation.Reservation{ID: id, TenantID: tenant, Phone: phone, Name: "Lucía", Date: date, Time: at, PartySize: party}
	f.res.Put(r)
	return r
}

func dinner() capacity.Overrides {
	return capacity.Overrides{
		TotalCapacity:       num(30),
		MaxPartySize:        num(8),
		StandardDurationMin: num(90),
		BufferMin:           num(10),
		SlotIntervalMin:     num(15),
		Shifts:              []capacity.Shift{{Start: "19:00", End: "23:30"}},
	}
}

func TestExecute_CheckAvailabilityResolvesRelativeDates(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 15)
	f.seed("r2", "2026-10-20", "20:15", 14)

	got := f.exec(t, Action{Type: ActionCheckAvailability, Date: "mañana", Time: "20:30", PartySize: 5})
	assert.True(t, got.Success)
	require.NotNil(t, got.Availability)
	assert.Equal(t, availability.StatusNotAvailable, got.Availability.Status)
	assert.Equal(t, availability.ReasonCapacity, got.Reason)
	assert.Len(t, got.Alternatives, 2)

	got = f.exec(t, Action{Type: ActionCheckAvailability, Date: "tomorrow", Time: "22:00", PartySize: 5})
	assert.True(t, got.Success)
	assert.True(t, got.Availability.Available())
}

func TestExecute_CheckAvailabilityValidation(t *testing.T) {
	f := newFixture(t, dinner())

	got := f.exec(t, Action{Type: ActionCheckAvailability, Time: "20:00"})
	assert.False(t, got.Success)
	assert.Equal(t, FailureValidation, got.Failure)
	assert.Contains(t, got.Message, "date")
	assert.Contains(t, got.Message, "party_size")

	got = f.exec(t, Action{Type: ActionCheckAvailability, Date: "someday", Time: "20:00", PartySize: 2})
	assert.Equal(t, FailureValidation, got.Failure)

	got = f.exec(t, Action{Type: ActionCheckAvailability, Date: "today", Time: "25:00", PartySize: 2})
	assert.Equal(t, FailureValidation, got.Failure)

	got = f.exec(t, Action{Type: ActionCheckAvailability, Date: "today", Time: "20:00", PartySize: -1})
	assert.Equal(t, FailureValidation, got.Failure)
}

func TestExecute_CreatePersistsRoundedTime(t *testing.T) {
	f := newFixture(t, dinner())

	got := f.exec(t, Action{Type: ActionCreate, Date: "20/10", Time: "20:07", PartySize: 4, Name: "Lucía", Notes: str("terraza")})
	require.True(t, got.Success, got.Message)
	require.NotNil(t, got.Data)
	assert.Equal(t, "20:00", got.NormalizedTime)
	assert.Equal(t, "2026-10-20", got.Data.Date)
	assert.Equal(t, "20:00", got.Data.Time)
	assert.Equal(t, phone, got.Data.Phone)
	assert.Equal(t, reservation.StatusActive, got.Data.Status)

	stored, err := f.res.GetByID(context.Background(), tenant, got.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, "terraza", *stored.Notes)
}

func TestExecute_CreateCanonicalizesOnGridTime(t *testing.T) {
	f := newFixture(t, dinner())
	got := f.exec(t, Action{Type: ActionCreate, Date: "2026-10-20", Time: "9:30", PartySize: 2, Name: "Ana"})
	// 09:30 is outside every shift.
	assert.False(t, got.Success)
	assert.Equal(t, availability.ReasonOutOfHours, got.Reason)

	got = f.exec(t, Action{Type: ActionCreate, Date: "2026-10-20", Time: "21:0", PartySize: 2, Name: "Ana"})
	require.True(t, got.Success)
	assert.Equal(t, "21:00", got.Data.Time)
}

func TestExecute_CreateRechecksAndAborts(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 15)
	f.seed("r2", "2026-10-20", "20:15", 14)

	got := f.exec(t, Action{Type: ActionCreate, Date: "2026-10-20", Time: "20:30", PartySize: 5, Name: "Ana"})
	assert.False(t, got.Success)
	assert.Equal(t, FailurePolicy, got.Failure)
	assert.Equal(t, availability.ReasonCapacity, got.Reason)
	assert.Equal(t, []availability.Alternative{
		{Date: "2026-10-20", Time: "21:45"},
		{Date: "2026-10-20", Time: "22:00"},
	}, got.Alternatives)
	assert.Nil(t, got.Data)

	list, err := f.res.ListActiveByDate(context.Background(), tenant, "2026-10-20")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestExecute_CreateRequiresName(t *testing.T) {
	f := newFixture(t, dinner())
	got := f.exec(t, Action{Type: ActionCreate, Date: "2026-10-20", Time: "20:00", PartySize: 2, Name: "  "})
	assert.Equal(t, FailureValidation, got.Failure)
	assert.Contains(t, got.Message, "name")
	assert.Equal(t, 0, f.checker.calls)
}

func TestExecute_UpdateNotesOrTableNeverRechecks(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 4)

	got := f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", Notes: str("cumpleaños")})
	require.True(t, got.Success)
	assert.Equal(t, "cumpleaños", *got.Data.Notes)

	got = f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", TableID: str("t7")})
	require.True(t, got.Success)
	assert.Equal(t, "t7", *got.Data.TableID)

	got = f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", Date: "2026-10-20", Time: "20:00", PartySize: 4})
	require.True(t, got.Success)

	assert.Equal(t, 0, f.checker.calls)
	assert.Nil(t, got.Availability)
}

func TestExecute_UpdateTableIsLoggedAsOverride(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 4)

	f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", TableID: str("t7")})

	entries := f.logs.FilterField(zap.Bool("table_override", true)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "table reassigned", entries[0].Message)
}

func TestExecute_UpdateExcludesItself(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 8)
	f.seed("r2", "2026-10-20", "20:00", 22)

	// Moving r1 by 15 minutes still overlaps its old slot, which must not count.
	got := f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", Time: "20:15"})
	require.True(t, got.Success, got.Message)
	assert.Equal(t, "20:15", got.Data.Time)
	assert.Equal(t, "20:15", got.NormalizedTime)
	assert.Equal(t, 1, f.checker.calls)
}

func TestExecute_UpdateRejectedLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 4)
	f.seed("r2", "2026-10-20", "20:00", 24)

	got := f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", PartySize: 7, Notes: str("ignored")})
	assert.False(t, got.Success)
	assert.Equal(t, availability.ReasonCapacity, got.Reason)
	assert.NotNil(t, got.Alternatives)

	stored, err := f.res.GetByID(context.Background(), tenant, "r1")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.PartySize)
	assert.Nil(t, stored.Notes)
}

func TestExecute_UpdateRelativeDateMove(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 4)

	got := f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", Date: "viernes"})
	require.True(t, got.Success, got.Message)
	assert.Equal(t, "2026-10-23", got.Data.Date)
	assert.Equal(t, "20:00", got.Data.Time)
	assert.Equal(t, "20:00", got.NormalizedTime)
}

func TestExecute_UpdateStoresTheValidatedSlot(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:07", 4)

	got := f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", PartySize: 5})
	require.True(t, got.Success, got.Message)
	assert.Equal(t, "20:00", got.Data.Time)
	assert.Equal(t, "20:00", got.NormalizedTime)
	assert.Equal(t, 5, got.Data.PartySize)
	assert.Equal(t, 1, f.checker.calls)
}

func TestExecute_UpdateFailures(t *testing.T) {
	f := newFixture(t, dinner())
	f.res.Put(reservation.Reservation{ID: "gone", TenantID: tenant, Date: "2026-10-20", Time: "20:00", PartySize: 2, Status: reservation.StatusCancelled})
	f.seed("r1", "2026-10-20", "20:00", 2)

	got := f.exec(t, Action{Type: ActionUpdate})
	assert.Equal(t, FailureValidation, got.Failure)

	got = f.exec(t, Action{Type: ActionUpdate, ReservationID: "nope", Notes: str("x")})
	assert.Equal(t, FailureNotFound, got.Failure)

	got = f.exec(t, Action{Type: ActionUpdate, ReservationID: "gone", Notes: str("x")})
	assert.Equal(t, FailureValidation, got.Failure)

	got = f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", Time: "late"})
	assert.Equal(t, FailureValidation, got.Failure)

	got = f.exec(t, Action{Type: ActionUpdate, ReservationID: "r1", PartySize: -2})
	assert.Equal(t, FailureValidation, got.Failure)
}

func TestExecute_UpdateIsTenantScoped(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 2)

	r, err := f.engine.Execute(context.Background(), Action{Type: ActionUpdate, ReservationID: "r1", Notes: str("x")}, Scope{Tenant: "otro"})
	require.NoError(t, err)
	assert.Equal(t, FailureNotFound, r.Failure)
}

func TestExecute_Cancel(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("r1", "2026-10-20", "20:00", 2)

	got := f.exec(t, Action{Type: ActionCancel, ReservationID: "r1"})
	require.True(t, got.Success)
	require.NotNil(t, got.Data)
	assert.Equal(t, reservation.StatusCancelled, got.Data.Status)

	list, err := f.res.ListActiveByDate(context.Background(), tenant, "2026-10-20")
	require.NoError(t, err)
	assert.Empty(t, list)

	got = f.exec(t, Action{Type: ActionCancel, ReservationID: "missing"})
	assert.Equal(t, FailureNotFound, got.Failure)

	got = f.exec(t, Action{Type: ActionCancel})
	assert.Equal(t, FailureValidation, got.Failure)
}

func TestExecute_NoneAndUnknown(t *testing.T) {
	f := newFixture(t, dinner())

	got := f.exec(t, Action{Type: ActionNone})
	assert.True(t, got.Success)

	got = f.exec(t, Action{Type: "delete_everything"})
	assert.Equal(t, FailureValidation, got.Failure)

	r, err := f.engine.Execute(context.Background(), Action{Type: ActionNone}, Scope{})
	require.NoError(t, err)
	assert.Equal(t, FailureValidation, r.Failure)
}

type brokenStore struct {
	*memory.ReservationStore
}

func (brokenStore) Create(context.Context, string, reservation.NewReservation) (reservation.Reservation, error) {
	return reservation.Reservation{}, errors.New("disk full")
}

func TestExecute_StorageErrorsPropagate(t *testing.T) {
	policy := capacity.NewPolicy(memory.NewCapacityStore(), nil, nil)
	store := brokenStore{memory.NewReservationStore()}
	e := NewEngine(store, policy, availability.NewEngine(policy, store, nil), WithClock(func() time.Time { return now }))

	_, err := e.Execute(context.Background(),
		Action{Type: ActionCreate, Date: "2026-10-20", Time: "20:00", PartySize: 2, Name: "Ana"},
		Scope{Tenant: tenant})
	assert.ErrorContains(t, err, "disk full")
}

func TestExecute_LockerPreventsOverbooking(t *testing.T) {
	o := dinner()
	o.TotalCapacity = num(4)
	f := newFixture(t, o, WithLocker(lock.NewLocal()))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := f.engine.Execute(context.Background(),
				Action{Type: ActionCreate, Date: "2026-10-20", Time: "20:00", PartySize: 2, Name: "Ana"},
				Scope{Tenant: tenant, Phone: phone})
			if !assert.NoError(t, err) {
				return
			}
			if r.Success {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, ok)
}

func TestGetStats(t *testing.T) {
	f := newFixture(t, dinner())
	f.seed("past-day", "2026-10-18", "20:00", 2)
	f.seed("earlier-today", "2026-10-19", "11:30", 2)
	f.seed("later-today", "2026-10-19", "20:00", 2)
	f.seed("next-week", "2026-10-26", "13:00", 2)
	f.seed("tomorrow", "2026-10-20", "21:00", 2)
	f.res.Put(reservation.Reservation{ID: "cancelled", TenantID: tenant, Phone: phone, Date: "2026-10-21", Time: "20:00", Status: reservation.StatusCancelled})
	f.res.Put(reservation.Reservation{ID: "someone-else", TenantID: tenant, Phone: "+34999", Date: "2026-10-21", Time: "20:00"})

	stats, err := f.engine.GetStats(context.Background(), tenant, phone, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Count)
	assert.True(t, stats.HasActive)
	ids := make([]string, 0, len(stats.Reservations))
	for _, r := range stats.Reservations {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"later-today", "tomorrow", "next-week"}, ids)

	stats, err = f.engine.GetStats(context.Background(), tenant, phone, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.False(t, stats.HasActive)
	assert.NotNil(t, stats.Reservations)
}
