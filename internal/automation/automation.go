// Package automation reacts to brokerage events with follow-up work, such
// as agenda reminders for policies that renew automatically.
package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// ReminderTime is the time of day of renewal reminders.
const ReminderTime = "09:00"

// Handler turns events into store changes.
type Handler struct {
	store  store.Store
	pub    events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates an automation handler. Appointments it creates are
// announced on pub.
func NewHandler(s store.Store, pub events.Publisher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = &events.NoopPublisher{}
	}
	return &Handler{store: s, pub: pub, logger: logger, now: time.Now}
}

// ReminderTitle is the title of the renewal reminder of a policy.
func ReminderTitle(p *model.Policy) string {
	return "Renovação da apólice " + p.PolicyNumber
}

// EnsureRenewalReminder creates the renewal reminder of p unless the
// policy does not renew automatically, the reminder date has passed, or
// one already exists. It returns the created appointment or nil.
func (h *Handler) EnsureRenewalReminder(ctx context.Context, p *model.Policy) (*model.Appointment, error) {
	info := p.Renewal(model.DateOf(h.now()))
	if info == nil || info.DaysUntil < 0 {
		return nil, nil
	}

	existing, _, err := h.store.ListAppointments(ctx, model.AppointmentFilter{UserID: p.UserID, PolicyID: p.ID})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	title := ReminderTitle(p)
	for _, a := range existing {
		if a.Title == title {
			return nil, nil
		}
	}

	a := &model.Appointment{
		ID:       idgen.New(idgen.Appointment),
		UserID:   p.UserID,
		ClientID: p.ClientID,
		PolicyID: p.ID,
		Title:    title,
		Date:     info.Date,
		Time:     ReminderTime,
		Status:   model.AppointmentPending,
		Priority: model.PriorityHigh,
	}
	if err := h.store.CreateAppointment(ctx, a); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	if err := h.pub.Publish(ctx, events.TopicAppointmentCreated, events.AppointmentChanged{Appointment: a}); err != nil {
		h.logger.Warn("automation: publish failed", "topic", events.TopicAppointmentCreated, "err", err)
	}
	return a, nil
}

// Handle dispatches one bus message.
func (h *Handler) Handle(ctx context.Context, msg events.Message) {
	switch msg.Topic {
	case events.TopicPolicyActivated:
		var ev events.PolicyActivated
		if err := json.Unmarshal(msg.Data, &ev); err != nil || ev.Policy == nil {
			h.logger.Warn("automation: bad event payload", "topic", msg.Topic, "err", err)
			return
		}
		a, err := h.EnsureRenewalReminder(ctx, ev.Policy)
		if err != nil {
			h.logger.Error("automation: renewal reminder failed", "policy", ev.Policy.ID, "err", err)
			return
		}
		if a != nil {
			h.logger.Info("automation: renewal reminder created", "policy", ev.Policy.ID, "appointment", a.ID, "date", a.Date)
		}
	}
}

// StartSubscriber listens on every brokerage topic and handles the
// messages it knows about. It blocks until ctx is cancelled or the
// subscription closes.
func (h *Handler) StartSubscriber(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.Prefix + ">")
	if err != nil {
		return fmt.Errorf("automation: subscribe: %w", err)
	}
	defer cancel()

	h.logger.Info("automation: subscriber started")

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("automation: subscriber stopping")
			return nil
		case msg, ok := <-ch:
			if !ok {
				h.logger.Info("automation: subscription channel closed")
				return nil
			}
			h.Handle(ctx, msg)
		}
	}
}
