// Package memory implements store.Store in process memory. It backs the
// development server and the tests of packages that sit above the store.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

type state struct {
	clients      map[string]model.Client
	policies     map[string]model.Policy
	txTypes      map[string]model.TransactionType
	transactions map[string]model.Transaction
	payments     map[string]model.Payment
	billing      map[string]model.BillingEntry
	appointments map[string]model.Appointment
	claims       map[string]model.Claim
	producers    map[string]model.Producer
	companies    map[string]model.Company
	ramos        map[string]model.Ramo
	profiles     map[string]model.Profile
	metrics      map[string]model.DailyMetric
	syncLogs     []model.SheetsSyncLog
	events       []model.Event
	nextEventID  int64
}

func newState() *state {
	return &state{
		clients:      map[string]model.Client{},
		policies:     map[string]model.Policy{},
		txTypes:      map[string]model.TransactionType{},
		transactions: map[string]model.Transaction{},
		payments:     map[string]model.Payment{},
		billing:      map[string]model.BillingEntry{},
		appointments: map[string]model.Appointment{},
		claims:       map[string]model.Claim{},
		producers:    map[string]model.Producer{},
		companies:    map[string]model.Company{},
		ramos:        map[string]model.Ramo{},
		profiles:     map[string]model.Profile{},
		metrics:      map[string]model.DailyMetric{},
	}
}

// clone copies every table. Records are stored by value, so a shallow map
// copy isolates a transaction from the committed state.
func (st *state) clone() *state {
	return &state{
		clients:      maps.Clone(st.clients),
		policies:     maps.Clone(st.policies),
		txTypes:      maps.Clone(st.txTypes),
		transactions: maps.Clone(st.transactions),
		payments:     maps.Clone(st.payments),
		billing:      maps.Clone(st.billing),
		appointments: maps.Clone(st.appointments),
		claims:       maps.Clone(st.claims),
		producers:    maps.Clone(st.producers),
		companies:    maps.Clone(st.companies),
		ramos:        maps.Clone(st.ramos),
		profiles:     maps.Clone(st.profiles),
		metrics:      maps.Clone(st.metrics),
		syncLogs:     slices.Clone(st.syncLogs),
		events:       slices.Clone(st.events),
		nextEventID:  st.nextEventID,
	}
}

// Store is an in-memory store.Store. The zero value is not usable; call New.
type Store struct {
	mu    *sync.Mutex
	state *state
	inTx  bool
	now   func() time.Time
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		mu:    &sync.Mutex{},
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// lock acquires the store mutex unless the caller is already inside a
// transaction, which holds it for its whole duration.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// RunInTransaction runs fn against a copy of the state and commits the copy
// only when fn succeeds.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: s.mu, state: s.state.clone(), inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) stamp(created *time.Time) time.Time {
	now := s.now()
	if created.IsZero() {
		*created = now
	}
	return now
}

func owned(recordUser, userID string) bool {
	return userID == "" || recordUser == userID
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inRange(d, from, to model.Date) bool {
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

// page applies limit/offset to an already filtered and sorted slice.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func values[K comparable, V any](m map[K]V, keep func(V) bool) []V {
	var out []V
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
