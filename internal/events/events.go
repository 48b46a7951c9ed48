// Package events defines the brokerage event topics and the buses that
// carry them: NATS when configured, otherwise an in-process bus.
package events

import (
	"context"

	"github.com/sgcpro/sgc/internal/model"
)

// Prefix is the root of every topic; subscribe to Prefix+">" for all events.
const Prefix = "sgc."

// Event topic constants
const (
	TopicClientCreated = "sgc.client.created"
	TopicClientUpdated = "sgc.client.updated"
	TopicClientDeleted = "sgc.client.deleted"

	TopicPolicyCreated   = "sgc.policy.created"
	TopicPolicyUpdated   = "sgc.policy.updated"
	TopicPolicyActivated = "sgc.policy.activated"
	TopicPolicyCancelled = "sgc.policy.cancelled"
	TopicPolicyRenewed   = "sgc.policy.renewed"
	TopicPolicyDeleted   = "sgc.policy.deleted"

	TopicTransactionCreated = "sgc.transaction.created"
	TopicTransactionUpdated = "sgc.transaction.updated"
	TopicTransactionDeleted = "sgc.transaction.deleted"
	TopicPaymentCreated     = "sgc.payment.created"

	TopicBillingCreated = "sgc.billing.created"
	TopicBillingUpdated = "sgc.billing.updated"
	TopicBillingDeleted = "sgc.billing.deleted"

	TopicAppointmentCreated   = "sgc.appointment.created"
	TopicAppointmentUpdated   = "sgc.appointment.updated"
	TopicAppointmentCompleted = "sgc.appointment.completed"
	TopicAppointmentDeleted   = "sgc.appointment.deleted"

	TopicClaimCreated       = "sgc.claim.created"
	TopicClaimUpdated       = "sgc.claim.updated"
	TopicClaimStatusChanged = "sgc.claim.status_changed"
	TopicClaimDeleted       = "sgc.claim.deleted"

	TopicQuoteExtracted = "sgc.quote.extracted"

	// Job events
	TopicCommissionBackfilled = "sgc.job.commission_backfilled"
	TopicMetricsConsolidated  = "sgc.job.metrics_consolidated"
	TopicMetricsSynced        = "sgc.job.metrics_synced"
)

// Event types

type ClientChanged struct {
	Client *model.Client `json:"client"`
}

type PolicyChanged struct {
	Policy *model.Policy `json:"policy"`
}

type PolicyActivated struct {
	Policy     *model.Policy      `json:"policy"`
	Commission *model.Transaction `json:"commission,omitempty"`
}

type PolicyRenewed struct {
	Policy    *model.Policy `json:"policy"`
	Successor *model.Policy `json:"successor"`
}

type TransactionChanged struct {
	Transaction *model.Transaction `json:"transaction"`
}

type PaymentCreated struct {
	Payment     *model.Payment     `json:"payment"`
	Transaction *model.Transaction `json:"transaction"`
}

type BillingChanged struct {
	Entry *model.BillingEntry `json:"entry"`
}

type AppointmentChanged struct {
	Appointment *model.Appointment `json:"appointment"`
}

type AppointmentCompleted struct {
	Appointment *model.Appointment `json:"appointment"`
	Next        *model.Appointment `json:"next_appointment,omitempty"`
}

type ClaimChanged struct {
	Claim *model.Claim `json:"claim"`
}

type ClaimStatusChanged struct {
	Claim *model.Claim      `json:"claim"`
	From  model.ClaimStatus `json:"from"`
}

// Deleted is published for every *.deleted topic.
type Deleted struct {
	ID string `json:"id"`
}

// JobFinished carries the result of a batch job.
type JobFinished struct {
	Job    string `json:"job"`
	Result any    `json:"result"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
