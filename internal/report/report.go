// Package report builds the policy and billing reports of the dashboard and
// renders them as CSV or PDF.
package report

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sgcpro/sgc/internal/billing"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// Unspecified labels policies without a ramo.
const Unspecified = "Não especificado"

// Filter selects the policies of a report. From and To bound created_at
// and are inclusive; zero values leave the period open.
type Filter struct {
	From      model.Date
	To        model.Date
	Companies []string
	Ramos     []string
	Producers []string
	Status    []model.PolicyStatus
}

// PolicyFilter converts f into a store filter for userID.
func (f Filter) PolicyFilter(userID string) model.PolicyFilter {
	pf := model.PolicyFilter{
		UserID:      userID,
		Status:      f.Status,
		CompanyIDs:  f.Companies,
		Ramos:       f.Ramos,
		ProducerIDs: f.Producers,
	}
	if !f.From.IsZero() {
		from := f.From.Time
		pf.CreatedFrom = &from
	}
	if !f.To.IsZero() {
		to := f.To.AddDays(1).Time
		pf.CreatedTo = &to
	}
	return pf
}

// Row is one policy line of a report.
type Row struct {
	PolicyID       string             `json:"policy_id"`
	PolicyNumber   string             `json:"policy_number"`
	ClientName     string             `json:"client_name"`
	CompanyName    string             `json:"company_name"`
	Ramo           string             `json:"ramo"`
	ProducerName   string             `json:"producer_name,omitempty"`
	Premium        float64            `json:"premium"`
	Commission     float64            `json:"commission"`
	Status         model.PolicyStatus `json:"status"`
	StartDate      model.Date         `json:"start_date,omitzero"`
	ExpirationDate model.Date         `json:"expiration_date,omitzero"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Policies is a policy report with its totals.
type Policies struct {
	Rows            []Row   `json:"rows"`
	Count           int     `json:"count"`
	TotalPremium    float64 `json:"total_premium"`
	TotalCommission float64 `json:"total_commission"`
}

// lookups resolves the names a report shows for ids.
type lookups struct {
	clients   map[string]string
	companies map[string]string
	producers map[string]string
}

func loadLookups(ctx context.Context, s store.Store, userID string) (*lookups, error) {
	l := &lookups{
		clients:   map[string]string{},
		companies: map[string]string{},
		producers: map[string]string{},
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clients, _, err := s.ListClients(ctx, model.ClientFilter{UserID: userID})
		if err != nil {
			return fmt.Errorf("list clients: %w", err)
		}
		for _, c := range clients {
			l.clients[c.ID] = c.Name
		}
		return nil
	})
	g.Go(func() error {
		companies, err := s.ListCompanies(ctx, userID)
		if err != nil {
			return fmt.Errorf("list companies: %w", err)
		}
		for _, c := range companies {
			l.companies[c.ID] = c.Name
		}
		return nil
	})
	g.Go(func() error {
		producers, err := s.ListProducers(ctx, userID)
		if err != nil {
			return fmt.Errorf("list producers: %w", err)
		}
		for _, p := range producers {
			l.producers[p.ID] = p.Name
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return l, nil
}

// name returns m[id], or id itself for values stored as plain text.
func name(m map[string]string, id string) string {
	if n, ok := m[id]; ok {
		return n
	}
	return id
}

// BuildPolicies loads the policies of userID matching f.
func BuildPolicies(ctx context.Context, s store.Store, userID string, f Filter) (*Policies, error) {
	policies, _, err := s.ListPolicies(ctx, f.PolicyFilter(userID))
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	l, err := loadLookups(ctx, s, userID)
	if err != nil {
		return nil, err
	}

	r := &Policies{Rows: make([]Row, 0, len(policies))}
	for _, p := range policies {
		ramo := p.Type
		if ramo == "" {
			ramo = Unspecified
		}
		row := Row{
			PolicyID:       p.ID,
			PolicyNumber:   p.PolicyNumber,
			ClientName:     name(l.clients, p.ClientID),
			CompanyName:    name(l.companies, p.CompanyID),
			Ramo:           ramo,
			ProducerName:   name(l.producers, p.ProducerID),
			Premium:        p.PremiumValue,
			Commission:     p.CommissionAmount(),
			Status:         p.Status,
			StartDate:      p.StartDate,
			ExpirationDate: p.ExpirationDate,
			CreatedAt:      p.CreatedAt,
		}
		r.Rows = append(r.Rows, row)
		r.TotalPremium += row.Premium
		r.TotalCommission += row.Commission
	}
	r.Count = len(r.Rows)
	r.TotalPremium = model.RoundCents(r.TotalPremium)
	r.TotalCommission = model.RoundCents(r.TotalCommission)
	return r, nil
}

// Option is a selectable filter value.
type Option struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Metadata lists the values the report filters can take.
type Metadata struct {
	Seguradoras []Option `json:"seguradoras"`
	Ramos       []string `json:"ramos"`
	Status      []string `json:"status"`
	Produtores  []Option `json:"produtores"`
}

// BuildMetadata collects the distinct companies, ramos and statuses found
// on the policies of userID, plus every producer.
func BuildMetadata(ctx context.Context, s store.Store, userID string) (*Metadata, error) {
	policies, _, err := s.ListPolicies(ctx, model.PolicyFilter{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	l, err := loadLookups(ctx, s, userID)
	if err != nil {
		return nil, err
	}

	md := &Metadata{Seguradoras: []Option{}, Ramos: []string{}, Status: []string{}, Produtores: []Option{}}
	seen := map[string]bool{}
	for _, p := range policies {
		if p.CompanyID != "" && !seen["c:"+p.CompanyID] {
			seen["c:"+p.CompanyID] = true
			md.Seguradoras = append(md.Seguradoras, Option{ID: p.CompanyID, Name: name(l.companies, p.CompanyID)})
		}
		ramo := cmp.Or(p.Type, Unspecified)
		if !seen["r:"+ramo] {
			seen["r:"+ramo] = true
			md.Ramos = append(md.Ramos, ramo)
		}
		if p.Status != "" && !seen["s:"+string(p.Status)] {
			seen["s:"+string(p.Status)] = true
			md.Status = append(md.Status, string(p.Status))
		}
	}
	for id, n := range l.producers {
		md.Produtores = append(md.Produtores, Option{ID: id, Name: n})
	}
	slices.SortFunc(md.Seguradoras, func(a, b Option) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(md.Produtores, func(a, b Option) int { return cmp.Compare(a.Name, b.Name) })
	slices.Sort(md.Ramos)
	slices.Sort(md.Status)
	return md, nil
}

// Billing is the ledger summary of a period.
type Billing struct {
	From    model.Date      `json:"from,omitzero"`
	To      model.Date      `json:"to,omitzero"`
	Entries int             `json:"entries"`
	Metrics billing.Metrics `json:"metrics"`
}

// BuildBilling computes the ledger metrics of userID between from and to.
func BuildBilling(ctx context.Context, s store.Store, userID string, from, to model.Date) (*Billing, error) {
	entries, _, err := s.ListBillingEntries(ctx, model.BillingFilter{UserID: userID, DateFrom: from, DateTo: to})
	if err != nil {
		return nil, fmt.Errorf("list billing entries: %w", err)
	}
	return &Billing{From: from, To: to, Entries: len(entries), Metrics: billing.Compute(entries)}, nil
}
