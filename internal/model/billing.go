package model

import "time"

// EntryType is the direction of a billing ledger entry.
type EntryType string

const (
	EntryIncome  EntryType = "receita"
	EntryExpense EntryType = "despesa"
)

// IsValid checks whether the entry type is a known value.
func (t EntryType) IsValid() bool {
	return t == EntryIncome || t == EntryExpense
}

// EntryStatus says whether a ledger entry has settled.
type EntryStatus string

const (
	EntrySettled EntryStatus = "efetivado"
	EntryPending EntryStatus = "pendente"
)

// IsValid checks whether the entry status is a known value.
func (s EntryStatus) IsValid() bool {
	return s == EntrySettled || s == EntryPending
}

// BillingEntry is a line of the brokerage's own ledger (faturamento).
type BillingEntry struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Description string      `json:"description"`
	Value       float64     `json:"value"`
	Date        Date        `json:"date"`
	Type        EntryType   `json:"type"`
	Category    string      `json:"category,omitempty"`
	Status      EntryStatus `json:"status"`
	CostCenter  string      `json:"cost_center,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// BillingFilter holds criteria for querying ledger entries.
type BillingFilter struct {
	UserID     string      `json:"user_id,omitempty"`
	Type       EntryType   `json:"type,omitempty"`
	Status     EntryStatus `json:"status,omitempty"`
	Category   string      `json:"category,omitempty"`
	CostCenter string      `json:"cost_center,omitempty"`
	DateFrom   Date        `json:"date_from,omitzero"`
	DateTo     Date        `json:"date_to,omitzero"` // inclusive
	Limit      int         `json:"limit,omitempty"`
	Offset     int         `json:"offset,omitempty"`
}
