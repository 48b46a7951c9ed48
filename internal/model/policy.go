package model

import (
	"math"
	"time"
)

// PolicyStatus is the lifecycle state of a policy. Quotes are policies in
// the Orçamento state.
type PolicyStatus string

const (
	PolicyQuote         PolicyStatus = "Orçamento"
	PolicyAwaitingIssue PolicyStatus = "Aguardando Apólice"
	PolicyActive        PolicyStatus = "Ativa"
	PolicyCancelled     PolicyStatus = "Cancelada"
	PolicyRenewed       PolicyStatus = "Renovada"
)

func (s PolicyStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s PolicyStatus) IsValid() bool {
	switch s {
	case PolicyQuote, PolicyAwaitingIssue, PolicyActive, PolicyCancelled, PolicyRenewed:
		return true
	}
	return false
}

// RenewalStatus tracks the broker's renewal work on a policy.
type RenewalStatus string

const (
	RenewalPending      RenewalStatus = "Pendente"
	RenewalContacted    RenewalStatus = "Em Contato"
	RenewalProposalSent RenewalStatus = "Proposta Enviada"
	RenewalRenewed      RenewalStatus = "Renovada"
	RenewalNotRenewed   RenewalStatus = "Não Renovada"
)

// IsValid checks whether the renewal status is a known value. Empty is valid.
func (s RenewalStatus) IsValid() bool {
	switch s {
	case "", RenewalPending, RenewalContacted, RenewalProposalSent, RenewalRenewed, RenewalNotRenewed:
		return true
	}
	return false
}

const (
	// RenewalLeadDays is how long before expiration an automatic renewal is due.
	RenewalLeadDays = 15
	// RenewalUpcomingDays marks a renewal as upcoming on the dashboard.
	RenewalUpcomingDays = 30
	// ExpiringWindowDays is the default horizon for the expiring-policies list.
	ExpiringWindowDays = 60
)

// Policy is an insurance policy (apólice) or quote.
type Policy struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	ClientID         string        `json:"client_id"`
	PolicyNumber     string        `json:"policy_number,omitempty"`
	CompanyID        string        `json:"insurance_company,omitempty"`
	Type             string        `json:"type,omitempty"` // ramo name
	RamoID           string        `json:"ramo_id,omitempty"`
	InsuredAsset     string        `json:"insured_asset,omitempty"`
	PremiumValue     float64       `json:"premium_value"`
	CommissionRate   float64       `json:"commission_rate"`
	StartDate        Date          `json:"start_date,omitzero"`
	ExpirationDate   Date          `json:"expiration_date,omitzero"`
	Status           PolicyStatus  `json:"status"`
	RenewalStatus    RenewalStatus `json:"renewal_status,omitempty"`
	AutomaticRenewal bool          `json:"automatic_renewal"`
	ProducerID       string        `json:"producer_id,omitempty"`
	BrokerageID      string        `json:"brokerage_id,omitempty"`
	DocumentKey      string        `json:"pdf_key,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// CommissionAmount is premium × rate / 100, rounded to cents.
func (p *Policy) CommissionAmount() float64 {
	return RoundCents(p.PremiumValue * p.CommissionRate / 100)
}

// RenewalInfo describes when an automatically renewing policy is due.
type RenewalInfo struct {
	Date      Date `json:"date"`
	DaysUntil int  `json:"days_until"`
	Upcoming  bool `json:"upcoming"`
}

// Renewal returns the renewal schedule for policies with automatic renewal
// and an expiration date, or nil otherwise.
func (p *Policy) Renewal(today Date) *RenewalInfo {
	if !p.AutomaticRenewal || p.ExpirationDate.IsZero() {
		return nil
	}
	due := p.ExpirationDate.AddDays(-RenewalLeadDays)
	days := DaysBetween(today, due)
	return &RenewalInfo{
		Date:      due,
		DaysUntil: days,
		Upcoming:  days >= 0 && days <= RenewalUpcomingDays,
	}
}

// PolicyFilter holds criteria for querying policies. An empty UserID
// matches every user and is reserved for system jobs.
type PolicyFilter struct {
	UserID      string         `json:"user_id,omitempty"`
	Status      []PolicyStatus `json:"status,omitempty"`
	ClientID    string         `json:"client_id,omitempty"`
	CompanyIDs  []string       `json:"company_ids,omitempty"`
	Ramos       []string       `json:"ramos,omitempty"`
	ProducerIDs []string       `json:"producer_ids,omitempty"`
	Search      string         `json:"search,omitempty"`
	CreatedFrom *time.Time     `json:"created_from,omitempty"`
	CreatedTo   *time.Time     `json:"created_to,omitempty"` // exclusive
	ExpiresFrom Date           `json:"expires_from,omitzero"`
	ExpiresTo   Date           `json:"expires_to,omitzero"` // inclusive
	Limit       int            `json:"limit,omitempty"`
	Offset      int            `json:"offset,omitempty"`
}

// RoundCents rounds a monetary amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// DaysBetween returns the whole number of days from a to b.
func DaysBetween(a, b Date) int {
	return int(math.Round(b.Sub(a.Time).Hours() / 24))
}
