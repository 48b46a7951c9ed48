package jobs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sgcpro/sgc/internal/commission"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/metrics"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store/memory"
)

func newRunner(s *memory.Store, pub events.Publisher) *Runner {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return &Runner{
		Store:        s,
		Consolidator: &metrics.Consolidator{Store: s, Logger: logger},
		Publisher:    pub,
		Logger:       logger,
		Now:          func() time.Time { return time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC) },
	}
}

func TestRunner_Consolidate(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.UpsertProfile(ctx, &model.Profile{ID: "u1", FullName: "Maria", Email: "m@x.com", Role: model.RoleBroker, Active: true})

	bus := events.NewLocalBus(4)
	ch, cancel, _ := bus.Subscribe(events.TopicMetricsConsolidated)
	defer cancel()

	r := newRunner(s, bus)
	res, err := r.Consolidate(ctx, r.Yesterday())
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if res.Consolidated != 1 || res.Date.Format("2006-01-02") != "2024-05-01" {
		t.Errorf("result = %+v", res)
	}
	select {
	case <-ch:
	default:
		t.Error("no job event published")
	}
}

func TestRunner_SyncSheetsNotConfigured(t *testing.T) {
	r := newRunner(memory.New(), nil)
	if _, err := r.SyncSheets(context.Background(), r.Yesterday()); !errors.Is(err, metrics.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestRunner_Backfill(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.CreatePolicy(ctx, &model.Policy{
		ID: "apo-1", UserID: "u1", ClientID: "cli-1", PolicyNumber: "123",
		PremiumValue: 1000, CommissionRate: 10, Status: model.PolicyActive,
	})
	if err := commission.EnsureDefaultTypes(ctx, s, "u1"); err != nil {
		t.Fatal(err)
	}

	rep, err := newRunner(s, &events.NoopPublisher{}).BackfillCommissions(ctx)
	if err != nil {
		t.Fatalf("BackfillCommissions: %v", err)
	}
	if rep.Summary.Total != 1 || rep.Summary.Success != 1 {
		t.Errorf("summary = %+v", rep.Summary)
	}
}

func TestNewScheduler(t *testing.T) {
	r := newRunner(memory.New(), nil)

	s, err := NewScheduler(r, Schedule{Consolidate: DefaultConsolidateSpec, SheetsSync: DefaultSheetsSpec})
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	// Without a spreadsheet only consolidation is scheduled.
	if n := s.Entries(); n != 1 {
		t.Errorf("entries = %d, want 1", n)
	}
	s.Start()
	s.Stop()

	if _, err := NewScheduler(r, Schedule{Consolidate: "every tuesday"}); err == nil {
		t.Error("invalid spec accepted")
	}
}
