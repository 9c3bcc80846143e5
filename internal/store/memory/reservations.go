// Package memory keeps tenant data in process. It backs dev mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/tablebook/internal/domain/reservation"
)

type ReservationStore struct {
	mu   sync.RWMutex
	byID map[string]map[string]reservation.Reservation // tenant -> id -> record
	now  func() time.Time
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{
		byID: make(map[string]map[string]reservation.Reservation),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Put inserts or replaces a record as is. Used for seeding.
func (s *ReservationStore) Put(r reservation.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = reservation.StatusActive
	}
	s.tenant(r.TenantID)[r.ID] = r
}

func (s *ReservationStore) ListActiveByDate(_ context.Context, tenant, date string) ([]reservation.Reservation, error) {
	return s.filter(tenant, func(r reservation.Reservation) bool { return r.Date == date }), nil
}

func (s *ReservationStore) ListActiveByPhone(_ context.Context, tenant, phone string) ([]reservation.Reservation, error) {
	return s.filter(tenant, func(r reservation.Reservation) bool { return r.Phone == phone }), nil
}

func (s *ReservationStore) GetByID(_ context.Context, tenant, id string) (reservation.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[tenant][id]
	if !ok {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	return r, nil
}

func (s *ReservationStore) Create(_ context.Context, tenant string, in reservation.NewReservation) (reservation.Reservation, error) {
	r := reservation.Reservation{
		ID:        uuid.NewString(),
		TenantID:  tenant,
		Name:      in.Name,
		Phone:     in.Phone,
		Date:      in.Date,
		Time:      in.Time,
		PartySize: in.PartySize,
		Notes:     in.Notes,
		TableID:   in.TableID,
		Status:    reservation.StatusActive,
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant(tenant)[r.ID] = r
	return r, nil
}

func (s *ReservationStore) Update(_ context.Context, tenant, id string, p reservation.Patch) (reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[tenant][id]
	if !ok {
		return reservation.Reservation{}, reservation.ErrNotFound
	}
	r = p.Apply(r)
	s.byID[tenant][id] = r
	return r, nil
}

func (s *ReservationStore) Cancel(_ context.Context, tenant, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[tenant][id]
	if !ok {
		return false, nil
	}
	r.Status = reservation.StatusCancelled
	s.byID[tenant][id] = r
	return true, nil
}

func (s *ReservationStore) tenant(tenant string) map[string]reservation.Reservation {
	m, ok := s.byID[tenant]
	if !ok {
		m = make(map[string]reservation.Reservation)
		s.byID[tenant] = m
	}
	return m
}

func (s *ReservationStore) filter(tenant string, keep func(reservation.Reservation) bool) []reservation.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []reservation.Reservation{}
	for _, r := range s.byID[tenant] {
		if r.IsActive() && keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out
}
