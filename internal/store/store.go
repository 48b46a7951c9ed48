// Package store defines the persistence interface of the brokerage backend.
//
// Every user-owned record is read, updated and deleted through its owner's
// user id; a record owned by someone else behaves exactly like a missing one.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist or is not owned
	// by the requesting user.
	ErrNotFound = sql.ErrNoRows

	// ErrConflict is returned when a write would break a uniqueness or
	// reference constraint.
	ErrConflict = errors.New("conflict")
)

// Store defines the persistence interface for brokerage data.
//
// The Lock* reads return the same record as their Get* counterparts. Inside
// RunInTransaction they also hold the record until the transaction ends, so
// read-modify-write sequences on one record run one at a time.
type Store interface {
	// Clients
	CreateClient(ctx context.Context, c *model.Client) error
	GetClient(ctx context.Context, userID, id string) (*model.Client, error)
	ListClients(ctx context.Context, filter model.ClientFilter) ([]*model.Client, int, error) // returns clients, total count, error
	UpdateClient(ctx context.Context, c *model.Client) error
	DeleteClient(ctx context.Context, userID, id string) error
	ClientKPIs(ctx context.Context, filter model.ClientFilter, since time.Time) (*model.ClientKPIs, error)

	// Policies
	CreatePolicy(ctx context.Context, p *model.Policy) error
	GetPolicy(ctx context.Context, userID, id string) (*model.Policy, error)
	LockPolicy(ctx context.Context, userID, id string) (*model.Policy, error)
	ListPolicies(ctx context.Context, filter model.PolicyFilter) ([]*model.Policy, int, error)
	UpdatePolicy(ctx context.Context, p *model.Policy) error
	DeletePolicy(ctx context.Context, userID, id string) error

	// Transaction types
	CreateTransactionType(ctx context.Context, tt *model.TransactionType) error
	ListTransactionTypes(ctx context.Context, userID string) ([]*model.TransactionType, error)

	// Transactions
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	LockTransaction(ctx context.Context, userID, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]*model.Transaction, int, error)
	UpdateTransaction(ctx context.Context, t *model.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	// Payments
	CreatePayment(ctx context.Context, p *model.Payment) error
	ListPayments(ctx context.Context, userID, transactionID string) ([]*model.Payment, error)

	// Billing ledger
	CreateBillingEntry(ctx context.Context, e *model.BillingEntry) error
	GetBillingEntry(ctx context.Context, userID, id string) (*model.BillingEntry, error)
	ListBillingEntries(ctx context.Context, filter model.BillingFilter) ([]*model.BillingEntry, int, error)
	UpdateBillingEntry(ctx context.Context, e *model.BillingEntry) error
	DeleteBillingEntry(ctx context.Context, userID, id string) error

	// Appointments
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, userID, id string) (*model.Appointment, error)
	LockAppointment(ctx context.Context, userID, id string) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filter model.AppointmentFilter) ([]*model.Appointment, int, error)
	UpdateAppointment(ctx context.Context, a *model.Appointment) error
	DeleteAppointment(ctx context.Context, userID, id string) error

	// Claims
	CreateClaim(ctx context.Context, c *model.Claim) error
	GetClaim(ctx context.Context, userID, id string) (*model.Claim, error)
	ListClaims(ctx context.Context, filter model.ClaimFilter) ([]*model.Claim, int, error)
	UpdateClaim(ctx context.Context, c *model.Claim) error
	DeleteClaim(ctx context.Context, userID, id string) error

	// Catalog
	CreateProducer(ctx context.Context, p *model.Producer) error
	ListProducers(ctx context.Context, userID string) ([]*model.Producer, error)
	UpdateProducer(ctx context.Context, p *model.Producer) error
	DeleteProducer(ctx context.Context, userID, id string) error
	CreateCompany(ctx context.Context, c *model.Company) error
	ListCompanies(ctx context.Context, userID string) ([]*model.Company, error)
	UpdateCompany(ctx context.Context, c *model.Company) error
	DeleteCompany(ctx context.Context, userID, id string) error
	CreateRamo(ctx context.Context, r *model.Ramo) error
	ListRamos(ctx context.Context, userID string) ([]*model.Ramo, error)
	UpdateRamo(ctx context.Context, r *model.Ramo) error
	DeleteRamo(ctx context.Context, userID, id string) error

	// Profiles
	UpsertProfile(ctx context.Context, p *model.Profile) error
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
	ListProfiles(ctx context.Context, activeOnly bool) ([]*model.Profile, error)

	// Daily metrics and spreadsheet sync
	CreateDailyMetric(ctx context.Context, m *model.DailyMetric) error
	ListDailyMetrics(ctx context.Context, filter model.DailyMetricFilter) ([]*model.DailyMetric, error)
	UpdateDailyMetricSync(ctx context.Context, id string, status model.SyncStatus, syncedAt *time.Time, errMsg string) error
	CreateSheetsSyncLog(ctx context.Context, l *model.SheetsSyncLog) error

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
