package sync

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string         `json:"version"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Counts    map[string]int `json:"counts"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// section is one record type of the export, in output order.
type section struct {
	name    string
	records []any
}

// sortedByID converts items to records ordered by id.
func sortedByID[T any](items []*T, id func(*T) string) []any {
	slices.SortFunc(items, func(a, b *T) int { return cmp.Compare(id(a), id(b)) })
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// ExportJSONL writes every user's data from the store as JSONL to w.
// Records are grouped by type and sorted by ID within each group.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	sections, err := collect(ctx, s)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(sections))
	for _, sec := range sections {
		counts[sec.name] = len(sec.records)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		Counts:    counts,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, sec := range sections {
		for _, r := range sec.records {
			if err := enc.Encode(record{Type: sec.name, Data: r}); err != nil {
				return fmt.Errorf("encode %s: %w", sec.name, err)
			}
		}
	}
	return nil
}

func collect(ctx context.Context, s store.Store) ([]section, error) {
	profiles, err := s.ListProfiles(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	clients, _, err := s.ListClients(ctx, model.ClientFilter{})
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	producers, err := s.ListProducers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list producers: %w", err)
	}
	companies, err := s.ListCompanies(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	ramos, err := s.ListRamos(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list ramos: %w", err)
	}
	policies, _, err := s.ListPolicies(ctx, model.PolicyFilter{})
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	types, err := s.ListTransactionTypes(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list transaction types: %w", err)
	}
	txs, _, err := s.ListTransactions(ctx, model.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	var payments []*model.Payment
	for _, t := range txs {
		ps, err := s.ListPayments(ctx, t.UserID, t.ID)
		if err != nil {
			return nil, fmt.Errorf("list payments for %s: %w", t.ID, err)
		}
		payments = append(payments, ps...)
	}
	entries, _, err := s.ListBillingEntries(ctx, model.BillingFilter{})
	if err != nil {
		return nil, fmt.Errorf("list billing entries: %w", err)
	}
	appointments, _, err := s.ListAppointments(ctx, model.AppointmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	claims, _, err := s.ListClaims(ctx, model.ClaimFilter{})
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	return []section{
		{"profile", sortedByID(profiles, func(p *model.Profile) string { return p.ID })},
		{"client", sortedByID(clients, func(c *model.Client) string { return c.ID })},
		{"producer", sortedByID(producers, func(p *model.Producer) string { return p.ID })},
		{"company", sortedByID(companies, func(c *model.Company) string { return c.ID })},
		{"ramo", sortedByID(ramos, func(r *model.Ramo) string { return r.ID })},
		{"policy", sortedByID(policies, func(p *model.Policy) string { return p.ID })},
		{"transaction_type", sortedByID(types, func(t *model.TransactionType) string { return t.ID })},
		{"transaction", sortedByID(txs, func(t *model.Transaction) string { return t.ID })},
		{"payment", sortedByID(payments, func(p *model.Payment) string { return p.ID })},
		{"billing_entry", sortedByID(entries, func(e *model.BillingEntry) string { return e.ID })},
		{"appointment", sortedByID(appointments, func(a *model.Appointment) string { return a.ID })},
		{"claim", sortedByID(claims, func(c *model.Claim) string { return c.ID })},
	}, nil
}
