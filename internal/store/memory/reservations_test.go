package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tablebook/internal/domain/reservation"
)

func TestReservationStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewReservationStore()

	r, err := s.Create(ctx, "t1", reservation.NewReservation{Name: "Ana", Phone: "600", Date: "2026-10-20", Time: "21:00", PartySize: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, reservation.StatusActive, r.Status)
	assert.False(t, r.CreatedAt.IsZero())

	list, err := s.ListActiveByDate(ctx, "t1", "2026-10-20")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, err := s.ListActiveByDate(ctx, "t2", "2026-10-20")
	require.NoError(t, err)
	assert.Empty(t, other, "tenants are isolated")

	four := 4
	updated, err := s.Update(ctx, "t1", r.ID, reservation.Patch{PartySize: &four})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.PartySize)
	assert.Equal(t, "21:00", updated.Time)

	ok, err := s.Cancel(ctx, "t1", r.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetByID(ctx, "t1", r.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, got.Status, "cancel keeps the record")

	list, err = s.ListActiveByDate(ctx, "t1", "2026-10-20")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReservationStore_Missing(t *testing.T) {
	ctx := context.Background()
	s := NewReservationStore()

	_, err := s.GetByID(ctx, "t1", "nope")
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	_, err = s.Update(ctx, "t1", "nope", reservation.Patch{})
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	ok, err := s.Cancel(ctx, "t1", "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReservationStore_ListActiveByPhoneIsOrdered(t *testing.T) {
	ctx := context.Background()
	s := NewReservationStore()
	s.Put(reservation.Reservation{ID: "b", TenantID: "t1", Phone: "600", Date: "2026-10-21", Time: "13:00", PartySize: 2})
	s.Put(reservation.Reservation{ID: "a", TenantID: "t1", Phone: "600", Date: "2026-10-20", Time: "21:00", PartySize: 2})
	s.Put(reservation.Reservation{ID: "c", TenantID: "t1", Phone: "700", Date: "2026-10-19", Time: "21:00", PartySize: 2})

	list, err := s.ListActiveByPhone(ctx, "t1", "600")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}
