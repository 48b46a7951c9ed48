package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

func (s *Store) CreateClient(_ context.Context, c *model.Client) error {
	defer s.lock()()
	c.UpdatedAt = s.stamp(&c.CreatedAt)
	if _, ok := s.state.clients[c.ID]; ok {
		return store.ErrConflict
	}
	s.state.clients[c.ID] = *c
	return nil
}

func (s *Store) GetClient(_ context.Context, userID, id string) (*model.Client, error) {
	defer s.lock()()
	c, ok := s.state.clients[id]
	if !ok || !owned(c.UserID, userID) {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListClients(_ context.Context, filter model.ClientFilter) ([]*model.Client, int, error) {
	defer s.lock()()
	matched := s.state.filterClients(filter)
	slices.SortFunc(matched, func(a, b model.Client) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return pointers(page(matched, filter.Limit, filter.Offset)), len(matched), nil
}

func (st *state) filterClients(filter model.ClientFilter) []model.Client {
	return values(st.clients, func(c model.Client) bool {
		if !owned(c.UserID, filter.UserID) {
			return false
		}
		if filter.Status != "" && c.Status != filter.Status {
			return false
		}
		if q := filter.Search; q != "" &&
			!containsFold(c.Name, q) && !containsFold(c.Email, q) &&
			!containsFold(c.Phone, q) && !containsFold(c.CPFCNPJ, q) {
			return false
		}
		if filter.CompanyID != "" || filter.Ramo != "" {
			return st.hasPolicy(c.ID, func(p model.Policy) bool {
				return (filter.CompanyID == "" || p.CompanyID == filter.CompanyID) &&
					(filter.Ramo == "" || p.Type == filter.Ramo || p.RamoID == filter.Ramo)
			})
		}
		return true
	})
}

func (st *state) hasPolicy(clientID string, match func(model.Policy) bool) bool {
	for _, p := range st.policies {
		if p.ClientID == clientID && match(p) {
			return true
		}
	}
	return false
}

func (s *Store) UpdateClient(_ context.Context, c *model.Client) error {
	defer s.lock()()
	cur, ok := s.state.clients[c.ID]
	if !ok || cur.UserID != c.UserID {
		return store.ErrNotFound
	}
	c.CreatedAt = cur.CreatedAt
	c.UpdatedAt = s.now()
	s.state.clients[c.ID] = *c
	return nil
}

func (s *Store) DeleteClient(_ context.Context, userID, id string) error {
	defer s.lock()()
	c, ok := s.state.clients[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	if s.state.hasPolicy(id, func(model.Policy) bool { return true }) {
		return store.ErrConflict
	}
	delete(s.state.clients, id)
	return nil
}

func (s *Store) ClientKPIs(_ context.Context, filter model.ClientFilter, since time.Time) (*model.ClientKPIs, error) {
	defer s.lock()()
	filter.Limit, filter.Offset = 0, 0
	var k model.ClientKPIs
	for _, c := range s.state.filterClients(filter) {
		if c.Status == model.ClientActive {
			k.TotalActive++
		}
		if !c.CreatedAt.Before(since) {
			k.NewClientsLast30d++
		}
		hasActive := false
		for _, p := range s.state.policies {
			if p.ClientID == c.ID && p.Status == model.PolicyActive {
				hasActive = true
				k.TotalPoliciesValue += p.PremiumValue
			}
		}
		if hasActive {
			k.ClientsWithPolicies++
		}
	}
	k.TotalPoliciesValue = model.RoundCents(k.TotalPoliciesValue)
	return &k, nil
}
