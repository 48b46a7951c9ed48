package model

import (
	"fmt"
	"time"
)

// AppointmentStatus is the state of an agenda item.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pendente"
	AppointmentDone      AppointmentStatus = "Realizado"
	AppointmentCancelled AppointmentStatus = "Cancelado"
)

func (s AppointmentStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentPending, AppointmentDone, AppointmentCancelled:
		return true
	}
	return false
}

// Priority is shared by appointments; claims use ClaimPriority.
type Priority string

const (
	PriorityLow    Priority = "Baixa"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "Alta"
	PriorityUrgent Priority = "Urgente"
)

// IsValid checks whether the priority is a known value.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TimeLayout is the HH:MM form of appointment times.
const TimeLayout = "15:04"

// Appointment is an agenda item, optionally recurring.
type Appointment struct {
	ID                  string            `json:"id"`
	UserID              string            `json:"user_id"`
	ClientID            string            `json:"client_id,omitempty"`
	PolicyID            string            `json:"policy_id,omitempty"`
	Title               string            `json:"title"`
	Date                Date              `json:"date"`
	Time                string            `json:"time"`
	Status              AppointmentStatus `json:"status"`
	Notes               string            `json:"notes,omitempty"`
	Priority            Priority          `json:"priority,omitempty"`
	RecurrenceRule      string            `json:"recurrence_rule,omitempty"`
	IsRecurring         bool              `json:"is_recurring"`
	ParentAppointmentID string            `json:"parent_appointment_id,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

// StartsAt combines date and time into a UTC instant. An empty time means
// midnight.
func (a *Appointment) StartsAt() (time.Time, error) {
	if a.Time == "" {
		return a.Date.Time, nil
	}
	t, err := time.Parse(TimeLayout, normalizeClock(a.Time))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: expected HH:MM", a.Time)
	}
	return a.Date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// SeriesRoot returns the id of the first appointment of a recurring series.
func (a *Appointment) SeriesRoot() string {
	if a.ParentAppointmentID != "" {
		return a.ParentAppointmentID
	}
	return a.ID
}

// normalizeClock accepts HH:MM:SS as stored by TIME columns.
func normalizeClock(s string) string {
	if len(s) == len("15:04:05") {
		return s[:5]
	}
	return s
}

// AppointmentFilter holds criteria for querying appointments.
type AppointmentFilter struct {
	UserID   string              `json:"user_id,omitempty"`
	Status   []AppointmentStatus `json:"status,omitempty"`
	ClientID string              `json:"client_id,omitempty"`
	PolicyID string              `json:"policy_id,omitempty"`
	ParentID string              `json:"parent_id,omitempty"`
	DateFrom Date                `json:"date_from,omitzero"`
	DateTo   Date                `json:"date_to,omitzero"` // inclusive
	Limit    int                 `json:"limit,omitempty"`
	Offset   int                 `json:"offset,omitempty"`
}
