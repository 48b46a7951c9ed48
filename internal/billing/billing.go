// Package billing computes ledger metrics and the presentation helpers of
// the finance screens.
package billing

import (
	"github.com/sgcpro/sgc/internal/model"
)

// Metrics summarises a set of ledger entries.
type Metrics struct {
	TotalReceitas float64 `json:"totalReceitas"`
	TotalDespesas float64 `json:"totalDespesas"`
	SaldoLiquido  float64 `json:"saldoLiquido"`
	TotalPendente float64 `json:"totalPendente"`
}

// Compute totals settled income and expenses and nets pending ones.
func Compute(entries []*model.BillingEntry) Metrics {
	var m Metrics
	for _, e := range entries {
		switch {
		case e.Status == model.EntrySettled && e.Type == model.EntryIncome:
			m.TotalReceitas += e.Value
		case e.Status == model.EntrySettled && e.Type == model.EntryExpense:
			m.TotalDespesas += e.Value
		case e.Status == model.EntryPending && e.Type == model.EntryIncome:
			m.TotalPendente += e.Value
		case e.Status == model.EntryPending && e.Type == model.EntryExpense:
			m.TotalPendente -= e.Value
		}
	}
	m.TotalReceitas = model.RoundCents(m.TotalReceitas)
	m.TotalDespesas = model.RoundCents(m.TotalDespesas)
	m.SaldoLiquido = model.RoundCents(m.TotalReceitas - m.TotalDespesas)
	m.TotalPendente = model.RoundCents(m.TotalPendente)
	return m
}
