package memory

import (
	"context"
	"slices"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

func (s *Store) CreatePolicy(_ context.Context, p *model.Policy) error {
	defer s.lock()()
	p.UpdatedAt = s.stamp(&p.CreatedAt)
	if _, ok := s.state.policies[p.ID]; ok {
		return store.ErrConflict
	}
	s.state.policies[p.ID] = *p
	return nil
}

func (s *Store) GetPolicy(_ context.Context, userID, id string) (*model.Policy, error) {
	defer s.lock()()
	p, ok := s.state.policies[id]
	if !ok || !owned(p.UserID, userID) {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

// LockPolicy is GetPolicy; memory transactions already run one at a time.
func (s *Store) LockPolicy(ctx context.Context, userID, id string) (*model.Policy, error) {
	return s.GetPolicy(ctx, userID, id)
}

func (s *Store) ListPolicies(_ context.Context, filter model.PolicyFilter) ([]*model.Policy, int, error) {
	defer s.lock()()
	matched := values(s.state.policies, func(p model.Policy) bool {
		return matchPolicy(p, filter)
	})
	slices.SortFunc(matched, func(a, b model.Policy) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return pointers(page(matched, filter.Limit, filter.Offset)), len(matched), nil
}

func matchPolicy(p model.Policy, f model.PolicyFilter) bool {
	if !owned(p.UserID, f.UserID) {
		return false
	}
	if len(f.Status) > 0 && !slices.Contains(f.Status, p.Status) {
		return false
	}
	if f.ClientID != "" && p.ClientID != f.ClientID {
		return false
	}
	if len(f.CompanyIDs) > 0 && !slices.Contains(f.CompanyIDs, p.CompanyID) {
		return false
	}
	if len(f.Ramos) > 0 && !slices.Contains(f.Ramos, p.Type) && !slices.Contains(f.Ramos, p.RamoID) {
		return false
	}
	if len(f.ProducerIDs) > 0 && !slices.Contains(f.ProducerIDs, p.ProducerID) {
		return false
	}
	if f.Search != "" && !containsFold(p.PolicyNumber, f.Search) && !containsFold(p.InsuredAsset, f.Search) {
		return false
	}
	if f.CreatedFrom != nil && p.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && !p.CreatedAt.Before(*f.CreatedTo) {
		return false
	}
	if !f.ExpiresFrom.IsZero() || !f.ExpiresTo.IsZero() {
		if p.ExpirationDate.IsZero() || !inRange(p.ExpirationDate, f.ExpiresFrom, f.ExpiresTo) {
			return false
		}
	}
	return true
}

func (s *Store) UpdatePolicy(_ context.Context, p *model.Policy) error {
	defer s.lock()()
	cur, ok := s.state.policies[p.ID]
	if !ok || cur.UserID != p.UserID {
		return store.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = s.now()
	s.state.policies[p.ID] = *p
	return nil
}

func (s *Store) DeletePolicy(_ context.Context, userID, id string) error {
	defer s.lock()()
	p, ok := s.state.policies[id]
	if !ok || p.UserID != userID {
		return store.ErrNotFound
	}
	for _, c := range s.state.claims {
		if c.PolicyID == id {
			return store.ErrConflict
		}
	}
	delete(s.state.policies, id)
	return nil
}
