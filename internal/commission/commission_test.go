package commission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
	"github.com/sgcpro/sgc/internal/store/memory"
)

var today = model.NewDate(2024, time.May, 10)

func activePolicy(id, user string, premium, rate float64) *model.Policy {
	return &model.Policy{
		ID:             id,
		UserID:         user,
		ClientID:       "cli-1",
		PolicyNumber:   "N-" + id,
		CompanyID:      "seg-1",
		PremiumValue:   premium,
		CommissionRate: rate,
		ExpirationDate: model.NewDate(2025, time.May, 10),
		Status:         model.PolicyActive,
		ProducerID:     "pro-1",
	}
}

func TestEnsureDefaultTypes_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for range 2 {
		if err := EnsureDefaultTypes(ctx, s, "u1"); err != nil {
			t.Fatalf("EnsureDefaultTypes: %v", err)
		}
	}
	types, _ := s.ListTransactionTypes(ctx, "u1")
	if len(types) != 2 {
		t.Fatalf("got %d types, want 2", len(types))
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if err := EnsureDefaultTypes(ctx, s, "u1"); err != nil {
		t.Fatal(err)
	}
	p := activePolicy("apo-1", "u1", 1000, 12.5)
	_ = s.CreatePolicy(ctx, p)

	res, err := Generate(ctx, s, p, Options{Today: today})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Status != StatusSuccess || res.Amount != 125 {
		t.Fatalf("got %+v", res)
	}
	tx := res.Transaction
	if tx.Description != "Comissão da apólice N-apo-1" || tx.Status != model.TxPending || tx.Nature != model.NatureIncome {
		t.Errorf("unexpected transaction %+v", tx)
	}
	if !tx.DueDate.Equal(p.ExpirationDate.Time) || !tx.Date.Equal(today.Time) {
		t.Errorf("dates: due=%v date=%v", tx.DueDate, tx.Date)
	}
	if tx.CompanyID != "seg-1" || tx.ProducerID != "pro-1" || tx.ClientID != "cli-1" {
		t.Errorf("policy fields not copied: %+v", tx)
	}

	again, err := Generate(ctx, s, p, Options{Today: today})
	if err != nil || again.Status != StatusSkipped || again.Reason != ReasonAlreadyExists {
		t.Errorf("second run: %+v, %v", again, err)
	}
}

func TestGenerate_ZeroAndMissingType(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	p := activePolicy("apo-1", "u1", 1000, 10)
	_ = s.CreatePolicy(ctx, p)
	res, err := Generate(ctx, s, p, Options{Today: today})
	if !errors.Is(err, ErrNoCommissionType) || res.Reason != ReasonNoCommissionType {
		t.Errorf("missing type: %+v, %v", res, err)
	}

	_ = EnsureDefaultTypes(ctx, s, "u1")
	zero := activePolicy("apo-2", "u1", 0, 10)
	_ = s.CreatePolicy(ctx, zero)
	res, err = Generate(ctx, s, zero, Options{Today: today})
	if err != nil || res.Status != StatusSkipped || res.Reason != ReasonZeroCommission {
		t.Errorf("zero premium: %+v, %v", res, err)
	}
}

func TestGenerate_UnknownPolicy(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = EnsureDefaultTypes(ctx, s, "u1")

	res, err := Generate(ctx, s, activePolicy("apo-9", "u1", 1000, 10), Options{Today: today})
	if !errors.Is(err, store.ErrNotFound) || res.Status != StatusError {
		t.Errorf("got %+v, %v", res, err)
	}
	if txs, _, _ := s.ListTransactions(ctx, model.TransactionFilter{UserID: "u1"}); len(txs) != 0 {
		t.Errorf("unexpected transactions %+v", txs)
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = EnsureDefaultTypes(ctx, s, "u1")
	p := activePolicy("apo-1", "u1", 1000, 10)
	_ = s.CreatePolicy(ctx, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunInTransaction(ctx, func(tx store.Store) error {
				_, err := Generate(ctx, tx, p, Options{Today: today})
				return err
			})
		}()
	}
	wg.Wait()

	txs, _, _ := s.ListTransactions(ctx, model.TransactionFilter{UserID: "u1", PolicyID: "apo-1"})
	if len(txs) != 1 {
		t.Errorf("got %d commissions, want 1", len(txs))
	}
}

func TestBackfill(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = EnsureDefaultTypes(ctx, s, "u1")

	for _, p := range []*model.Policy{
		activePolicy("apo-1", "u1", 1000, 10),
		activePolicy("apo-2", "u1", 0, 10),
		activePolicy("apo-3", "u2", 500, 10), // u2 has no types
	} {
		_ = s.CreatePolicy(ctx, p)
	}
	cancelled := activePolicy("apo-4", "u1", 900, 10)
	cancelled.Status = model.PolicyCancelled
	_ = s.CreatePolicy(ctx, cancelled)

	report, err := Backfill(ctx, s, today, nil)
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	want := Summary{Total: 3, Success: 1, Skipped: 1, Errors: 1}
	if report.Summary != want {
		t.Errorf("summary = %+v, want %+v", report.Summary, want)
	}
	txs, _, _ := s.ListTransactions(ctx, model.TransactionFilter{UserID: "u1"})
	if len(txs) != 1 || txs[0].Description != "Comissão da apólice N-apo-1 (Retroativa)" {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestBackfill_Empty(t *testing.T) {
	report, err := Backfill(context.Background(), memory.New(), today, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.Summary.Total != 0 || report.Message != "Nenhuma apólice ativa encontrada." {
		t.Errorf("got %+v", report)
	}
}
