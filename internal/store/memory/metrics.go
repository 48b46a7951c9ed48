package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

func (s *Store) UpsertProfile(_ context.Context, p *model.Profile) error {
	defer s.lock()()
	now := s.now()
	if cur, ok := s.state.profiles[p.ID]; ok {
		p.CreatedAt = cur.CreatedAt
	} else if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.state.profiles[p.ID] = *p
	return nil
}

func (s *Store) GetProfile(_ context.Context, id string) (*model.Profile, error) {
	defer s.lock()()
	p, ok := s.state.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) ListProfiles(_ context.Context, activeOnly bool) ([]*model.Profile, error) {
	defer s.lock()()
	out := values(s.state.profiles, func(p model.Profile) bool { return p.Active || !activeOnly })
	slices.SortFunc(out, func(a, b model.Profile) int { return strings.Compare(a.ID, b.ID) })
	return pointers(out), nil
}

func (s *Store) CreateDailyMetric(_ context.Context, m *model.DailyMetric) error {
	defer s.lock()()
	s.stamp(&m.CreatedAt)
	for _, existing := range s.state.metrics {
		if existing.UserID == m.UserID && existing.Date.Equal(m.Date.Time) {
			return store.ErrConflict
		}
	}
	s.state.metrics[m.ID] = *m
	return nil
}

func (s *Store) ListDailyMetrics(_ context.Context, f model.DailyMetricFilter) ([]*model.DailyMetric, error) {
	defer s.lock()()
	out := values(s.state.metrics, func(m model.DailyMetric) bool {
		return owned(m.UserID, f.UserID) &&
			(f.Date.IsZero() || m.Date.Equal(f.Date.Time)) &&
			(f.SyncStatus == "" || m.SyncStatus == f.SyncStatus)
	})
	slices.SortFunc(out, func(a, b model.DailyMetric) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		return strings.Compare(a.UserID, b.UserID)
	})
	return pointers(out), nil
}

func (s *Store) UpdateDailyMetricSync(_ context.Context, id string, status model.SyncStatus, syncedAt *time.Time, errMsg string) error {
	defer s.lock()()
	m, ok := s.state.metrics[id]
	if !ok {
		return store.ErrNotFound
	}
	m.SyncStatus = status
	m.SyncedAt = syncedAt
	m.ErrorMessage = errMsg
	s.state.metrics[id] = m
	return nil
}

func (s *Store) CreateSheetsSyncLog(_ context.Context, l *model.SheetsSyncLog) error {
	defer s.lock()()
	s.stamp(&l.CreatedAt)
	s.state.syncLogs = append(s.state.syncLogs, *l)
	return nil
}

// SyncLogs returns every recorded spreadsheet sync log in insertion order.
func (s *Store) SyncLogs() []model.SheetsSyncLog {
	defer s.lock()()
	return slices.Clone(s.state.syncLogs)
}

func (s *Store) RecordEvent(_ context.Context, e *model.Event) error {
	defer s.lock()()
	s.state.nextEventID++
	e.ID = s.state.nextEventID
	e.CreatedAt = s.now()
	s.state.events = append(s.state.events, *e)
	return nil
}

func (s *Store) GetEvents(_ context.Context, entityID string) ([]*model.Event, error) {
	defer s.lock()()
	var out []model.Event
	for _, e := range s.state.events {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return pointers(out), nil
}
