package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

func (s *Store) CreateTransactionType(_ context.Context, tt *model.TransactionType) error {
	defer s.lock()()
	s.stamp(&tt.CreatedAt)
	for _, existing := range s.state.txTypes {
		if existing.UserID == tt.UserID && existing.Name == tt.Name && existing.Nature == tt.Nature {
			return store.ErrConflict
		}
	}
	s.state.txTypes[tt.ID] = *tt
	return nil
}

func (s *Store) ListTransactionTypes(_ context.Context, userID string) ([]*model.TransactionType, error) {
	defer s.lock()()
	types := values(s.state.txTypes, func(tt model.TransactionType) bool { return owned(tt.UserID, userID) })
	slices.SortFunc(types, func(a, b model.TransactionType) int { return strings.Compare(a.Name, b.Name) })
	return pointers(types), nil
}

func (s *Store) CreateTransaction(_ context.Context, t *model.Transaction) error {
	defer s.lock()()
	s.stamp(&t.CreatedAt)
	if _, ok := s.state.transactions[t.ID]; ok {
		return store.ErrConflict
	}
	s.state.transactions[t.ID] = *t
	return nil
}

func (s *Store) GetTransaction(_ context.Context, userID, id string) (*model.Transaction, error) {
	defer s.lock()()
	t, ok := s.state.transactions[id]
	if !ok || !owned(t.UserID, userID) {
		return nil, store.ErrNotFound
	}
	return &t, nil
}

// LockTransaction is GetTransaction; memory transactions already run one at a time.
func (s *Store) LockTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	return s.GetTransaction(ctx, userID, id)
}

func (s *Store) ListTransactions(_ context.Context, f model.TransactionFilter) ([]*model.Transaction, int, error) {
	defer s.lock()()
	matched := values(s.state.transactions, func(t model.Transaction) bool {
		if !owned(t.UserID, f.UserID) {
			return false
		}
		if f.PolicyID != "" && t.PolicyID != f.PolicyID {
			return false
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			return false
		}
		if f.TypeID != "" && t.TypeID != f.TypeID {
			return false
		}
		if len(f.Status) > 0 && !slices.Contains(f.Status, t.Status) {
			return false
		}
		if f.Nature != "" && t.Nature != f.Nature {
			return false
		}
		return inRange(t.Date, f.DateFrom, f.DateTo)
	})
	slices.SortFunc(matched, func(a, b model.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return pointers(page(matched, f.Limit, f.Offset)), len(matched), nil
}

func (s *Store) UpdateTransaction(_ context.Context, t *model.Transaction) error {
	defer s.lock()()
	cur, ok := s.state.transactions[t.ID]
	if !ok || cur.UserID != t.UserID {
		return store.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	s.state.transactions[t.ID] = *t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	defer s.lock()()
	t, ok := s.state.transactions[id]
	if !ok || t.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.transactions, id)
	for pid, p := range s.state.payments {
		if p.TransactionID == id {
			delete(s.state.payments, pid)
		}
	}
	return nil
}

func (s *Store) CreatePayment(_ context.Context, p *model.Payment) error {
	defer s.lock()()
	s.stamp(&p.CreatedAt)
	if t, ok := s.state.transactions[p.TransactionID]; !ok || t.UserID != p.UserID {
		return store.ErrNotFound
	}
	s.state.payments[p.ID] = *p
	return nil
}

func (s *Store) ListPayments(_ context.Context, userID, transactionID string) ([]*model.Payment, error) {
	defer s.lock()()
	payments := values(s.state.payments, func(p model.Payment) bool {
		return p.TransactionID == transactionID && p.UserID == userID
	})
	slices.SortFunc(payments, func(a, b model.Payment) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return pointers(payments), nil
}

func (s *Store) CreateBillingEntry(_ context.Context, e *model.BillingEntry) error {
	defer s.lock()()
	s.stamp(&e.CreatedAt)
	s.state.billing[e.ID] = *e
	return nil
}

func (s *Store) GetBillingEntry(_ context.Context, userID, id string) (*model.BillingEntry, error) {
	defer s.lock()()
	e, ok := s.state.billing[id]
	if !ok || !owned(e.UserID, userID) {
		return nil, store.ErrNotFound
	}
	return &e, nil
}

func (s *Store) ListBillingEntries(_ context.Context, f model.BillingFilter) ([]*model.BillingEntry, int, error) {
	defer s.lock()()
	matched := values(s.state.billing, func(e model.BillingEntry) bool {
		return owned(e.UserID, f.UserID) &&
			(f.Type == "" || e.Type == f.Type) &&
			(f.Status == "" || e.Status == f.Status) &&
			(f.Category == "" || e.Category == f.Category) &&
			(f.CostCenter == "" || e.CostCenter == f.CostCenter) &&
			inRange(e.Date, f.DateFrom, f.DateTo)
	})
	slices.SortFunc(matched, func(a, b model.BillingEntry) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return pointers(page(matched, f.Limit, f.Offset)), len(matched), nil
}

func (s *Store) UpdateBillingEntry(_ context.Context, e *model.BillingEntry) error {
	defer s.lock()()
	cur, ok := s.state.billing[e.ID]
	if !ok || cur.UserID != e.UserID {
		return store.ErrNotFound
	}
	e.CreatedAt = cur.CreatedAt
	s.state.billing[e.ID] = *e
	return nil
}

func (s *Store) DeleteBillingEntry(_ context.Context, userID, id string) error {
	defer s.lock()()
	e, ok := s.state.billing[id]
	if !ok || e.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.billing, id)
	return nil
}
