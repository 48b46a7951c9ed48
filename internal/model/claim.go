package model

import "time"

// ClaimType enumerates the kinds of loss a client can report.
type ClaimType string

const (
	ClaimCollision  ClaimType = "Colisão"
	ClaimRobbery    ClaimType = "Roubo"
	ClaimTheft      ClaimType = "Furto"
	ClaimFire       ClaimType = "Incêndio"
	ClaimElectrical ClaimType = "Danos Elétricos"
	ClaimFlood      ClaimType = "Enchente"
	ClaimHail       ClaimType = "Granizo"
	ClaimVandalism  ClaimType = "Vandalismo"
	ClaimGlass      ClaimType = "Quebra de Vidros"
	ClaimAssistance ClaimType = "Assistência 24h"
	ClaimOther      ClaimType = "Outros"
)

// ClaimTypes lists the accepted claim types in display order.
var ClaimTypes = []ClaimType{
	ClaimCollision, ClaimRobbery, ClaimTheft, ClaimFire, ClaimElectrical, ClaimFlood,
	ClaimHail, ClaimVandalism, ClaimGlass, ClaimAssistance, ClaimOther,
}

// IsValid checks whether the claim type is a known value.
func (t ClaimType) IsValid() bool {
	for _, known := range ClaimTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ClaimPriority ranks how urgently a claim needs attention.
type ClaimPriority string

const (
	ClaimPriorityLow    ClaimPriority = "Baixa"
	ClaimPriorityMedium ClaimPriority = "Média"
	ClaimPriorityHigh   ClaimPriority = "Alta"
	ClaimPriorityUrgent ClaimPriority = "Urgente"
)

// IsValid checks whether the priority is a known value.
func (p ClaimPriority) IsValid() bool {
	switch p {
	case ClaimPriorityLow, ClaimPriorityMedium, ClaimPriorityHigh, ClaimPriorityUrgent:
		return true
	}
	return false
}

// ClaimStatus is the state of a claim with the insurer.
type ClaimStatus string

const (
	ClaimOpen      ClaimStatus = "Aberto"
	ClaimAnalysis  ClaimStatus = "Em Análise"
	ClaimApproved  ClaimStatus = "Aprovado"
	ClaimDenied    ClaimStatus = "Negado"
	ClaimFinalized ClaimStatus = "Finalizado"
)

func (s ClaimStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s ClaimStatus) IsValid() bool {
	_, ok := claimTransitions[s]
	return ok
}

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimOpen:      {ClaimAnalysis},
	ClaimAnalysis:  {ClaimApproved, ClaimDenied},
	ClaimApproved:  {ClaimFinalized},
	ClaimDenied:    {ClaimFinalized},
	ClaimFinalized: nil,
}

// CanTransition reports whether a claim may move from s to next.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MinClaimDescription is the minimum length of a claim description.
const MinClaimDescription = 10

// Claim is a loss reported against a policy (sinistro).
type Claim struct {
	ID                 string        `json:"id"`
	UserID             string        `json:"user_id"`
	PolicyID           string        `json:"policy_id"`
	ClientID           string        `json:"client_id,omitempty"`
	OccurrenceDate     Date          `json:"occurrence_date"`
	ClaimType          ClaimType     `json:"claim_type"`
	Description        string        `json:"description"`
	Location           string        `json:"location_occurrence,omitempty"`
	Circumstances      string        `json:"circumstances,omitempty"`
	PoliceReportNumber string        `json:"police_report_number,omitempty"`
	ClaimAmount        float64       `json:"claim_amount,omitempty"`
	DeductibleAmount   float64       `json:"deductible_amount,omitempty"`
	Priority           ClaimPriority `json:"priority"`
	Status             ClaimStatus   `json:"status"`
	AnalysisDeadline   Date          `json:"analysis_deadline,omitzero"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// ClaimFilter holds criteria for querying claims.
type ClaimFilter struct {
	UserID   string        `json:"user_id,omitempty"`
	PolicyID string        `json:"policy_id,omitempty"`
	ClientID string        `json:"client_id,omitempty"`
	Status   []ClaimStatus `json:"status,omitempty"`
	Limit    int           `json:"limit,omitempty"`
	Offset   int           `json:"offset,omitempty"`
}
