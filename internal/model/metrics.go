package model

import "time"

// Role is a profile's role inside the brokerage.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleBroker    Role = "corretor"
	RoleAssistant Role = "assistente"
)

// Profile is the brokerage user behind a user id.
type Profile struct {
	ID                      string    `json:"id"`
	FullName                string    `json:"nome_completo"`
	Email                   string    `json:"email"`
	Phone                   string    `json:"telefone,omitempty"`
	Role                    Role      `json:"role"`
	Active                  bool      `json:"ativo"`
	BirthdayMessageTemplate string    `json:"birthday_message_template,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// SyncStatus tracks whether a daily metric reached the spreadsheet.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncError   SyncStatus = "error"
)

// DailyMetric is the consolidated production of one user on one day.
type DailyMetric struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Date         Date       `json:"date"`
	Consorcio    float64    `json:"consorcio_value"`
	Saude        float64    `json:"saude_value"`
	Auto         float64    `json:"auto_value"`
	Residencial  float64    `json:"residencial_value"`
	Empresarial  float64    `json:"empresarial_value"`
	Outros       float64    `json:"outros_value"`
	NewPolicies  int        `json:"apolices_novas"`
	Renewals     int        `json:"renovacoes"`
	LostPolicies int        `json:"apolices_perdidas"`
	SyncStatus   SyncStatus `json:"sync_status"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Total is the sum of all ramo buckets.
func (m *DailyMetric) Total() float64 {
	return RoundCents(m.Consorcio + m.Saude + m.Auto + m.Residencial + m.Empresarial + m.Outros)
}

// DailyMetricFilter holds criteria for querying daily metrics.
type DailyMetricFilter struct {
	UserID     string     `json:"user_id,omitempty"`
	Date       Date       `json:"date,omitzero"`
	SyncStatus SyncStatus `json:"sync_status,omitempty"`
}

// SyncLogStatus is the outcome of one spreadsheet sync run.
type SyncLogStatus string

const (
	SyncLogSuccess        SyncLogStatus = "success"
	SyncLogPartialSuccess SyncLogStatus = "partial_success"
	SyncLogError          SyncLogStatus = "error"
)

// SheetsSyncLog records one spreadsheet sync run for a user.
type SheetsSyncLog struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	SyncDate        Date          `json:"sync_date"`
	Status          SyncLogStatus `json:"status"`
	Message         string        `json:"message"`
	ExecutionTimeMS int64         `json:"execution_time_ms"`
	CreatedAt       time.Time     `json:"created_at"`
}
