// Package client provides a transport-agnostic interface for the SGC API
// and an HTTP/JSON implementation that talks to the REST API.
package client

import (
	"context"
	"io"
	"time"

	"github.com/sgcpro/sgc/internal/commission"
	"github.com/sgcpro/sgc/internal/dedup"
	"github.com/sgcpro/sgc/internal/metrics"
	"github.com/sgcpro/sgc/internal/model"
)

// SGCClient is the interface the sgc CLI commands use to talk to the
// server. It is implemented by HTTPClient.
type SGCClient interface {
	// Clients
	CreateClient(ctx context.Context, req *ClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	ListClients(ctx context.Context, req *ListClientsRequest) (*ListClientsResponse, error)
	UpdateClient(ctx context.Context, id string, req *ClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) error
	ClientBirthdays(ctx context.Context, scope string) ([]*model.Client, error)
	ClientDuplicates(ctx context.Context) (*dedup.Report, error)

	// Policies
	CreatePolicy(ctx context.Context, req *PolicyRequest) (*model.Policy, error)
	GetPolicy(ctx context.Context, id string) (*model.Policy, error)
	ListPolicies(ctx context.Context, req *ListPoliciesRequest) (*ListPoliciesResponse, error)
	ExpiringPolicies(ctx context.Context, days int) (*ListPoliciesResponse, error)
	ActivatePolicy(ctx context.Context, id string) (*ActivateResponse, error)
	CancelPolicy(ctx context.Context, id string) (*model.Policy, error)
	RenewPolicy(ctx context.Context, id string) (*RenewResponse, error)

	// Finance
	ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error)
	CreatePayment(ctx context.Context, transactionID string, req *PaymentRequest) (*PaymentResponse, error)

	// Agenda
	CreateAppointment(ctx context.Context, req *AppointmentRequest) (*model.Appointment, error)
	ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	CompleteAppointment(ctx context.Context, id, rule string) (*CompleteResponse, error)
	Occurrences(ctx context.Context, id string, n int) ([]time.Time, error)
	Calendar(ctx context.Context, w io.Writer) error

	// Claims
	ListClaims(ctx context.Context, status []string) (*ListClaimsResponse, error)
	SetClaimStatus(ctx context.Context, id, status string) (*model.Claim, error)

	// Reports
	PolicyReport(ctx context.Context, req *PolicyReportRequest, w io.Writer) error

	// Events
	GetEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Jobs
	Consolidate(ctx context.Context, date string) (*metrics.ConsolidationResult, error)
	SyncSheets(ctx context.Context, date string) (*metrics.SyncResult, error)
	BackfillCommissions(ctx context.Context) (*commission.BackfillReport, error)
	Backup(ctx context.Context) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ClientRequest holds the fields of a client create or update. Nil pointer
// fields mean "don't change".
type ClientRequest struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	CPFCNPJ      *string `json:"cpf_cnpj,omitempty"`
	BirthDate    *string `json:"birth_date,omitempty"`
	Address      *string `json:"address,omitempty"`
	Status       *string `json:"status,omitempty"`
	Observations *string `json:"observations,omitempty"`
}

// ListClientsRequest holds parameters for listing clients.
type ListClientsRequest struct {
	Search     string
	Status     string
	Seguradora string
	Ramo       string
	Limit      int
	Offset     int
}

// ListClientsResponse is the response from ListClients.
type ListClientsResponse struct {
	Clients []*model.Client `json:"clients"`
	Total   int             `json:"total"`
}

// PolicyRequest holds parameters for creating a policy.
type PolicyRequest struct {
	ClientID         string  `json:"client_id"`
	PolicyNumber     string  `json:"policy_number,omitempty"`
	CompanyID        string  `json:"insurance_company,omitempty"`
	Type             string  `json:"type,omitempty"`
	InsuredAsset     string  `json:"insured_asset,omitempty"`
	PremiumValue     float64 `json:"premium_value"`
	CommissionRate   float64 `json:"commission_rate"`
	StartDate        string  `json:"start_date,omitempty"`
	ExpirationDate   string  `json:"expiration_date,omitempty"`
	Status           string  `json:"status,omitempty"`
	AutomaticRenewal bool    `json:"automatic_renewal"`
	ProducerID       string  `json:"producer_id,omitempty"`
}

// ListPoliciesRequest holds parameters for listing policies.
type ListPoliciesRequest struct {
	ClientID   string
	Status     []string
	Seguradora []string
	Ramo       []string
	Search     string
	Limit      int
	Offset     int
}

// PolicyItem is a policy as listed by the server, with its renewal info
// and, for expiring listings, the days left.
type PolicyItem struct {
	model.Policy
	Renewal             *model.RenewalInfo `json:"renewal,omitempty"`
	DaysUntilExpiration *int               `json:"days_until_expiration,omitempty"`
}

// ListPoliciesResponse is the response from ListPolicies.
type ListPoliciesResponse struct {
	Policies []*PolicyItem `json:"policies"`
	Total    int           `json:"total"`
}

// ActivateResponse is the response from ActivatePolicy.
type ActivateResponse struct {
	Policy     *model.Policy      `json:"policy"`
	Commission *model.Transaction `json:"commission"`
}

// RenewResponse is the response from RenewPolicy.
type RenewResponse struct {
	Policy    *model.Policy `json:"policy"`
	Successor *model.Policy `json:"successor"`
}

// ListTransactionsRequest holds parameters for listing transactions.
type ListTransactionsRequest struct {
	PolicyID string
	ClientID string
	Status   []string
	Nature   string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// TransactionItem is a transaction with its computed display title.
type TransactionItem struct {
	model.Transaction
	DisplayTitle string `json:"display_title"`
}

// ListTransactionsResponse is the response from ListTransactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionItem `json:"transactions"`
	Total        int                `json:"total"`
}

// PaymentRequest holds parameters for a partial payment.
type PaymentRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	PaymentDate string  `json:"payment_date,omitempty"`
}

// PaymentResponse is the response from CreatePayment.
type PaymentResponse struct {
	Payment     *model.Payment   `json:"payment"`
	Transaction *TransactionItem `json:"transaction"`
}

// AppointmentRequest holds parameters for creating an appointment.
type AppointmentRequest struct {
	Title          string `json:"title"`
	Date           string `json:"date"`
	Time           string `json:"time,omitempty"`
	ClientID       string `json:"client_id,omitempty"`
	PolicyID       string `json:"policy_id,omitempty"`
	Notes          string `json:"notes,omitempty"`
	Priority       string `json:"priority,omitempty"`
	RecurrenceRule string `json:"recurrence_rule,omitempty"`
}

// ListAppointmentsRequest holds parameters for listing appointments.
type ListAppointmentsRequest struct {
	Status   []string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// ListAppointmentsResponse is the response from ListAppointments.
type ListAppointmentsResponse struct {
	Appointments []*model.Appointment `json:"appointments"`
	Total        int                  `json:"total"`
}

// CompleteResponse is the response from CompleteAppointment.
type CompleteResponse struct {
	Appointment *model.Appointment `json:"appointment"`
	Next        *model.Appointment `json:"next_appointment"`
	NextDate    *model.Date        `json:"next_date"`
}

// ListClaimsResponse is the response from ListClaims.
type ListClaimsResponse struct {
	Claims []*model.Claim `json:"claims"`
	Total  int            `json:"total"`
}

// PolicyReportRequest holds parameters for a policy report.
type PolicyReportRequest struct {
	From        string
	To          string
	Seguradoras []string
	Ramos       []string
	Produtores  []string
	Status      []string
	// Format is json, csv or pdf.
	Format string
}
