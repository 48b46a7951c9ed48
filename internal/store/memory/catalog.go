package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

func (s *Store) CreateProducer(_ context.Context, p *model.Producer) error {
	defer s.lock()()
	s.stamp(&p.CreatedAt)
	s.state.producers[p.ID] = *p
	return nil
}

func (s *Store) ListProducers(_ context.Context, userID string) ([]*model.Producer, error) {
	defer s.lock()()
	out := values(s.state.producers, func(p model.Producer) bool { return owned(p.UserID, userID) })
	slices.SortFunc(out, func(a, b model.Producer) int { return strings.Compare(a.Name, b.Name) })
	return pointers(out), nil
}

func (s *Store) UpdateProducer(_ context.Context, p *model.Producer) error {
	defer s.lock()()
	cur, ok := s.state.producers[p.ID]
	if !ok || cur.UserID != p.UserID {
		return store.ErrNotFound
	}
	p.CreatedAt = cur.CreatedAt
	s.state.producers[p.ID] = *p
	return nil
}

func (s *Store) DeleteProducer(_ context.Context, userID, id string) error {
	defer s.lock()()
	p, ok := s.state.producers[id]
	if !ok || p.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.state.producers, id)
	return nil
}

func (s *Store) CreateCompany(_ context.Context, c *model.Company) error {
	defer s.lock()()
	s.stamp(&c.CreatedAt)
	s.state.companies[c.ID] = *c
	return nil
}

func (s *Store) ListCompanies(_ context.Context, userID string) ([]*model.Company, error) {
	defer s.lock()()
	out := values(s.state.companies, func(c model.Company) bool { return owned(c.UserID, userID) })
	slices.SortFunc(out, func(a, b model.Company) int { return strings.Compare(a.Name, b.Name) })
	return pointers(out), nil
}

func (s *Store) UpdateCompany(_ context.Context, c *model.Company) error {
	defer s.lock()()
	cur, ok := s.state.companies[c.ID]
	if !ok || cur.UserID != c.UserID {
		return store.ErrNotFound
	}
	c.CreatedAt = cur.CreatedAt
	s.state.companies[c.ID] = *c
	return nil
}

func (s *Store) DeleteCompany(_ context.Context, userID, id string) error {
	defer s.lock()()
	c, ok := s.state.companies[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	for _, p := range s.state.policies {
		if p.CompanyID == id {
			return store.ErrConflict
		}
	}
	delete(s.state.companies, id)
	return nil
}

func (s *Store) CreateRamo(_ context.Context, r *model.Ramo) error {
	defer s.lock()()
	s.stamp(&r.CreatedAt)
	s.state.ramos[r.ID] = *r
	return nil
}

func (s *Store) ListRamos(_ context.Context, userID string) ([]*model.Ramo, error) {
	defer s.lock()()
	out := values(s.state.ramos, func(r model.Ramo) bool { return owned(r.UserID, userID) })
	slices.SortFunc(out, func(a, b model.Ramo) int { return strings.Compare(a.Name, b.Name) })
	return pointers(out), nil
}

func (s *Store) UpdateRamo(_ context.Context, r *model.Ramo) error {
	defer s.lock()()
	cur, ok := s.state.ramos[r.ID]
	if !ok || cur.UserID != r.UserID {
		return store.ErrNotFound
	}
	r.CreatedAt = cur.CreatedAt
	s.state.ramos[r.ID] = *r
	return nil
}

func (s *Store) DeleteRamo(_ context.Context, userID, id string) error {
	defer s.lock()()
	r, ok := s.state.ramos[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	for _, p := range s.state.policies {
		if p.RamoID == id {
			return store.ErrConflict
		}
	}
	delete(s.state.ramos, id)
	return nil
}
