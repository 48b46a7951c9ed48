package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sgcpro/sgc/internal/recurrence"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) result() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// ValidateClient checks a Client for constraint violations.
func ValidateClient(c *Client) error {
	var ve ValidationError
	if strings.TrimSpace(c.Name) == "" {
		ve.add("name", "is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		ve.add("email", fmt.Sprintf("invalid address %q", c.Email))
	}
	if !c.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", c.Status))
	}
	return ve.result()
}

// ValidatePolicy checks a Policy for constraint violations. Quotes may omit
// the policy number.
func ValidatePolicy(p *Policy) error {
	var ve ValidationError
	if p.ClientID == "" {
		ve.add("client_id", "is required")
	}
	if !p.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", p.Status))
	} else if p.Status != PolicyQuote && strings.TrimSpace(p.PolicyNumber) == "" {
		ve.add("policy_number", "is required unless status is "+string(PolicyQuote))
	}
	if !p.RenewalStatus.IsValid() {
		ve.add("renewal_status", fmt.Sprintf("invalid value %q", p.RenewalStatus))
	}
	if p.PremiumValue < 0 {
		ve.add("premium_value", "must not be negative")
	}
	if p.CommissionRate < 0 || p.CommissionRate > 100 {
		ve.add("commission_rate", fmt.Sprintf("must be between 0 and 100, got %g", p.CommissionRate))
	}
	if !p.StartDate.IsZero() && !p.ExpirationDate.IsZero() && p.ExpirationDate.Before(p.StartDate) {
		ve.add("expiration_date", "must not be before start_date")
	}
	return ve.result()
}

// ValidateTransaction checks a Transaction for constraint violations.
func ValidateTransaction(t *Transaction) error {
	var ve ValidationError
	if strings.TrimSpace(t.Description) == "" {
		ve.add("description", "is required")
	}
	if t.Amount <= 0 {
		ve.add("amount", "must be greater than zero")
	}
	if !t.Nature.IsValid() {
		ve.add("nature", fmt.Sprintf("invalid value %q", t.Nature))
	}
	if !t.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", t.Status))
	}
	if t.PaidAmount < 0 || t.PaidAmount > t.Amount {
		ve.add("paid_amount", "must be between zero and amount")
	}
	return ve.result()
}

// ValidateBillingEntry checks a ledger entry for constraint violations.
func ValidateBillingEntry(e *BillingEntry) error {
	var ve ValidationError
	if strings.TrimSpace(e.Description) == "" {
		ve.add("description", "is required")
	}
	if e.Value <= 0 {
		ve.add("value", "must be greater than zero")
	}
	if e.Date.IsZero() {
		ve.add("date", "is required")
	}
	if !e.Type.IsValid() {
		ve.add("type", fmt.Sprintf("invalid value %q", e.Type))
	}
	if !e.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", e.Status))
	}
	return ve.result()
}

// ValidateAppointment checks an Appointment for constraint violations,
// including that its recurrence rule parses.
func ValidateAppointment(a *Appointment) error {
	var ve ValidationError
	if strings.TrimSpace(a.Title) == "" {
		ve.add("title", "is required")
	}
	if a.Date.IsZero() {
		ve.add("date", "is required")
	}
	if a.Time != "" {
		if _, err := time.Parse(TimeLayout, normalizeClock(a.Time)); err != nil {
			ve.add("time", fmt.Sprintf("invalid value %q: expected HH:MM", a.Time))
		}
	}
	if !a.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", a.Status))
	}
	if a.Priority != "" && !a.Priority.IsValid() {
		ve.add("priority", fmt.Sprintf("invalid value %q", a.Priority))
	}
	if a.RecurrenceRule != "" {
		if _, err := recurrence.Parse(a.RecurrenceRule); err != nil {
			ve.add("recurrence_rule", err.Error())
		}
	}
	return ve.result()
}

// ValidateClaim checks a Claim for constraint violations. Occurrences
// after today are rejected.
func ValidateClaim(c *Claim, today Date) error {
	var ve ValidationError
	if c.PolicyID == "" {
		ve.add("policy_id", "is required")
	}
	if c.OccurrenceDate.IsZero() {
		ve.add("occurrence_date", "is required")
	} else if c.OccurrenceDate.After(today) {
		ve.add("occurrence_date", "must not be in the future")
	}
	if !c.ClaimType.IsValid() {
		ve.add("claim_type", fmt.Sprintf("invalid value %q", c.ClaimType))
	}
	if len([]rune(strings.TrimSpace(c.Description))) < MinClaimDescription {
		ve.add("description", fmt.Sprintf("must be at least %d characters", MinClaimDescription))
	}
	if c.ClaimAmount < 0 {
		ve.add("claim_amount", "must not be negative")
	}
	if c.DeductibleAmount < 0 {
		ve.add("deductible_amount", "must not be negative")
	}
	if !c.Priority.IsValid() {
		ve.add("priority", fmt.Sprintf("invalid value %q", c.Priority))
	}
	if !c.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", c.Status))
	}
	return ve.result()
}

// ValidateName checks the single required name of catalog records.
func ValidateName(field, name string) error {
	var ve ValidationError
	if strings.TrimSpace(name) == "" {
		ve.add(field, "is required")
	}
	return ve.result()
}
