package automation

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store/memory"
)

func newHandler(s *memory.Store, pub events.Publisher) *Handler {
	h := NewHandler(s, pub, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	h.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

func renewingPolicy(expires model.Date) *model.Policy {
	return &model.Policy{
		ID: "apo-1", UserID: "u1", ClientID: "cli-1", PolicyNumber: "123",
		Status: model.PolicyActive, AutomaticRenewal: true, ExpirationDate: expires,
	}
}

func TestEnsureRenewalReminder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	h := newHandler(s, nil)

	a, err := h.EnsureRenewalReminder(ctx, renewingPolicy(model.NewDate(2024, time.July, 16)))
	if err != nil {
		t.Fatalf("EnsureRenewalReminder: %v", err)
	}
	if a == nil {
		t.Fatal("no reminder created")
	}
	if a.Title != "Renovação da apólice 123" || a.Date.Format("2006-01-02") != "2024-07-01" ||
		a.Time != ReminderTime || a.Priority != model.PriorityHigh || a.Status != model.AppointmentPending {
		t.Errorf("reminder = %+v", a)
	}

	// A second activation does not duplicate the reminder.
	again, err := h.EnsureRenewalReminder(ctx, renewingPolicy(model.NewDate(2024, time.July, 16)))
	if err != nil || again != nil {
		t.Errorf("second call: %v, %v", again, err)
	}
	_, total, _ := s.ListAppointments(ctx, model.AppointmentFilter{UserID: "u1"})
	if total != 1 {
		t.Errorf("appointments = %d, want 1", total)
	}
}

func TestEnsureRenewalReminder_Skips(t *testing.T) {
	ctx := context.Background()
	h := newHandler(memory.New(), nil)

	past := renewingPolicy(model.NewDate(2024, time.May, 10))
	if a, _ := h.EnsureRenewalReminder(ctx, past); a != nil {
		t.Errorf("reminder created for a past date: %+v", a)
	}

	manual := renewingPolicy(model.NewDate(2024, time.July, 16))
	manual.AutomaticRenewal = false
	if a, _ := h.EnsureRenewalReminder(ctx, manual); a != nil {
		t.Errorf("reminder created without automatic renewal: %+v", a)
	}
}

func TestStartSubscriber(t *testing.T) {
	s := memory.New()
	bus := events.NewLocalBus(8)
	h := newHandler(s, bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.StartSubscriber(ctx, bus) }()

	created, stop, _ := bus.Subscribe(events.TopicAppointmentCreated)
	defer stop()

	// Wait for the subscriber to register before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for {
		_ = bus.Publish(ctx, events.TopicPolicyActivated, events.PolicyActivated{
			Policy: renewingPolicy(model.NewDate(2024, time.July, 16)),
		})
		select {
		case msg := <-created:
			var ev events.AppointmentChanged
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				t.Fatal(err)
			}
			if ev.Appointment.PolicyID != "apo-1" {
				t.Errorf("appointment = %+v", ev.Appointment)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("StartSubscriber: %v", err)
			}
			return
		case <-time.After(20 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the reminder")
		}
	}
}
