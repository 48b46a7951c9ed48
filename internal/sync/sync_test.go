package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sgcpro/sgc/internal/blob"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store/memory"
)

// mockDestination records calls to Write.
type mockDestination struct {
	writes atomic.Int64
	last   atomic.Value // []byte
	err    error
}

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	d.writes.Add(1)
	cp := make([]byte, len(data))
	copy(cp, data)
	d.last.Store(cp)
	return d.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestSchedulerStartStop(t *testing.T) {
	ms := memory.New()
	_ = ms.CreateClient(context.Background(), &model.Client{ID: "cli-1", UserID: "u1", Name: "Ana", Status: model.ClientActive})

	dest := &mockDestination{}
	sched := NewScheduler(ms, []Destination{dest}, 50*time.Millisecond, testLogger())
	sched.Start()

	// Wait for at least the initial backup + one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}

	data, ok := dest.last.Load().([]byte)
	if !ok || len(data) == 0 {
		t.Fatal("expected non-empty data")
	}
	// 1 header + 1 client
	if lines := nonEmptyLines(string(data)); len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(memory.New(), nil, time.Minute, testLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestRunOnce_DestinationFailure(t *testing.T) {
	boom := errors.New("boom")
	bad := &mockDestination{err: boom}
	good := &mockDestination{}

	sched := NewScheduler(memory.New(), []Destination{bad, good}, time.Minute, testLogger())
	err := sched.RunOnce(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if good.writes.Load() != 1 {
		t.Errorf("healthy destination skipped after a failure")
	}
}

func TestBlobDestination(t *testing.T) {
	mem := blob.NewMemory()
	d := NewBlobDestination(mem, "backups")
	d.now = func() time.Time { return time.Date(2024, 5, 1, 3, 4, 5, 0, time.UTC) }

	if err := d.Write(context.Background(), []byte("{}\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, key := range []string{"backups/sgc-20240501T030405Z.jsonl", "backups/latest.jsonl"} {
		obj, err := mem.Get(context.Background(), key)
		if err != nil {
			t.Fatalf("Get %s: %v", key, err)
		}
		if obj.ContentType != "application/x-ndjson" || !strings.HasPrefix(string(obj.Data), "{}") {
			t.Errorf("%s = %+v", key, obj)
		}
	}
}
