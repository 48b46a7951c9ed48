package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	defer s.lock()()
	s.stamp(&a.CreatedAt)
	if _, ok := s.state.appointments[a.ID]; ok {
		return store.ErrConflict
	}
	s.state.appointments[a.ID] = *a
	return nil
}

func (s *Store) GetAppointment(_ context.Context, userID, id string) (*model.Appointment, error) {
	defer s.lock()()
	a, ok := s.state.appointments[id]
	if !ok || !owned(a.UserID, userID) {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

// LockAppointment is GetAppointment; memory transactions already run one at a time.
func (s *Store) LockAppointment(ctx context.Context, userID, id string) (*model.Appointment, error) {
	return s.GetAppointment(ctx, userID, id)
}

func (s *Store) ListAppointments(_ context.Context, f model.AppointmentFilter) ([]*model.Appointment, int, error) {
	defer s.lock()()
	matched := values(s.state.appointments, func(a model.Appointment) bool {
		return owned(a.UserID, f.UserID) &&
			(len(f.Status) == 0 || slices.Contains(f.Status, a.Status)) &&
			(f.ClientID == "" || a.ClientID == f.ClientID) &&
			(f.PolicyID == "" || a.PolicyID == f.PolicyID) &&
			(f.ParentID == "" || a.ParentAppointmentID == f.ParentID) &&
			inRange(a.Date, f.DateFrom, f.DateTo)
	})
	slices.SortFunc(matched, func(a, b model.Appointment) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		return strings.Compare(a.Time, b.Time)
	})
	return pointers(page(matched, f.Limit, f.Offset)), len(matched), nil
}

func (s *Store) UpdateAppointment(_ context.Context, a *model.Appointment) error {
	defer s.lock()()
	cur, ok := s.state.appointments[a.ID]
	if !ok || cur.UserID != a.UserID {
		return store.ErrNotFound
	}
	a.CreatedAt = cur.CreatedAt
	s.state.appointments[a.ID] = *a
	return nil
}

func (s *Store) DeleteAppointment(_ context.Context, userID, id string) error {
	defer s.lock()()
	a, ok := s.state.appointments[id]
	if !ok || a.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.appointments, id)
	return nil
}

func (s *Store) CreateClaim(_ context.Context, c *model.Claim) error {
	defer s.lock()()
	c.UpdatedAt = s.stamp(&c.CreatedAt)
	if _, ok := s.state.policies[c.PolicyID]; !ok {
		return store.ErrConflict
	}
	s.state.claims[c.ID] = *c
	return nil
}

func (s *Store) GetClaim(_ context.Context, userID, id string) (*model.Claim, error) {
	defer s.lock()()
	c, ok := s.state.claims[id]
	if !ok || !owned(c.UserID, userID) {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListClaims(_ context.Context, f model.ClaimFilter) ([]*model.Claim, int, error) {
	defer s.lock()()
	matched := values(s.state.claims, func(c model.Claim) bool {
		return owned(c.UserID, f.UserID) &&
			(f.PolicyID == "" || c.PolicyID == f.PolicyID) &&
			(f.ClientID == "" || c.ClientID == f.ClientID) &&
			(len(f.Status) == 0 || slices.Contains(f.Status, c.Status))
	})
	slices.SortFunc(matched, func(a, b model.Claim) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return pointers(page(matched, f.Limit, f.Offset)), len(matched), nil
}

func (s *Store) UpdateClaim(_ context.Context, c *model.Claim) error {
	defer s.lock()()
	cur, ok := s.state.claims[c.ID]
	if !ok || cur.UserID != c.UserID {
		return store.ErrNotFound
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.now()
	s.state.claims[c.ID] = *c
	return nil
}

func (s *Store) DeleteClaim(_ context.Context, userID, id string) error {
	defer s.lock()()
	c, ok := s.state.claims[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.claims, id)
	return nil
}
