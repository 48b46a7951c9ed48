package model

import (
	"strings"
	"testing"
	"time"
)

// fieldErrors extracts a *ValidationError from err or fails the test.
func fieldErrors(t *testing.T, err error) []FieldError {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	return ve.Errors
}

// hasFieldError reports whether the error list contains an error for the given field.
func hasFieldError(errs []FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func validPolicy() Policy {
	return Policy{
		ClientID:       "cli-1",
		PolicyNumber:   "AP-100",
		PremiumValue:   1200,
		CommissionRate: 15,
		StartDate:      NewDate(2024, time.January, 1),
		ExpirationDate: NewDate(2025, time.January, 1),
		Status:         PolicyActive,
	}
}

func TestValidateClient(t *testing.T) {
	c := Client{Name: "Maria Souza", Email: "maria@example.com", Status: ClientActive}
	if err := ValidateClient(&c); err != nil {
		t.Fatalf("valid client rejected: %v", err)
	}

	c = Client{Name: "  ", Email: "maria", Status: "ativo"}
	errs := fieldErrors(t, ValidateClient(&c))
	for _, field := range []string{"name", "email", "status"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected error on field %q", field)
		}
	}
}

func TestValidatePolicy(t *testing.T) {
	p := validPolicy()
	if err := ValidatePolicy(&p); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}

	for _, tc := range []struct {
		name   string
		mutate func(*Policy)
		field  string
	}{
		{"missing client", func(p *Policy) { p.ClientID = "" }, "client_id"},
		{"missing number", func(p *Policy) { p.PolicyNumber = "" }, "policy_number"},
		{"negative premium", func(p *Policy) { p.PremiumValue = -1 }, "premium_value"},
		{"rate over 100", func(p *Policy) { p.CommissionRate = 101 }, "commission_rate"},
		{"expires before start", func(p *Policy) { p.ExpirationDate = NewDate(2023, time.December, 1) }, "expiration_date"},
		{"bad status", func(p *Policy) { p.Status = "Vigente" }, "status"},
		{"bad renewal status", func(p *Policy) { p.RenewalStatus = "Talvez" }, "renewal_status"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := validPolicy()
			tc.mutate(&p)
			if !hasFieldError(fieldErrors(t, ValidatePolicy(&p)), tc.field) {
				t.Errorf("expected error on field %q", tc.field)
			}
		})
	}
}

func TestValidatePolicy_QuoteWithoutNumber(t *testing.T) {
	p := validPolicy()
	p.Status = PolicyQuote
	p.PolicyNumber = ""
	if err := ValidatePolicy(&p); err != nil {
		t.Errorf("quote without number should be valid, got: %v", err)
	}
}

func TestValidateAppointment(t *testing.T) {
	a := Appointment{
		Title:          "Visita ao cliente",
		Date:           NewDate(2024, time.March, 1),
		Time:           "09:00",
		Status:         AppointmentPending,
		RecurrenceRule: "FREQ=WEEKLY;INTERVAL=2",
	}
	if err := ValidateAppointment(&a); err != nil {
		t.Fatalf("valid appointment rejected: %v", err)
	}

	a.RecurrenceRule = "FREQ=SOMETIMES"
	a.Time = "25:00"
	errs := fieldErrors(t, ValidateAppointment(&a))
	if !hasFieldError(errs, "recurrence_rule") {
		t.Error("expected error on field 'recurrence_rule'")
	}
	if !hasFieldError(errs, "time") {
		t.Error("expected error on field 'time'")
	}
}

func TestValidateClaim(t *testing.T) {
	today := NewDate(2024, time.May, 10)
	c := Claim{
		PolicyID:       "apo-1",
		OccurrenceDate: NewDate(2024, time.May, 9),
		ClaimType:      ClaimCollision,
		Description:    "Colisão traseira no semáforo",
		Priority:       ClaimPriorityMedium,
		Status:         ClaimOpen,
	}
	if err := ValidateClaim(&c, today); err != nil {
		t.Fatalf("valid claim rejected: %v", err)
	}

	c.Description = "curta"
	c.OccurrenceDate = NewDate(2024, time.May, 11)
	c.ClaimType = "Terremoto"
	errs := fieldErrors(t, ValidateClaim(&c, today))
	for _, field := range []string{"description", "occurrence_date", "claim_type"} {
		if !hasFieldError(errs, field) {
			t.Errorf("expected error on field %q", field)
		}
	}
}

func TestValidateTransaction(t *testing.T) {
	tx := Transaction{Description: "Comissão", Amount: 100, Status: TxPending, Nature: NatureIncome}
	if err := ValidateTransaction(&tx); err != nil {
		t.Fatalf("valid transaction rejected: %v", err)
	}
	tx.Amount = 0
	tx.Nature = "GANHO"
	errs := fieldErrors(t, ValidateTransaction(&tx))
	if !hasFieldError(errs, "amount") || !hasFieldError(errs, "nature") {
		t.Errorf("expected amount and nature errors, got %v", errs)
	}
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "status", Message: `invalid value "x"`},
	}}
	got := ve.Error()
	if !strings.HasPrefix(got, "validation failed: ") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, "name: is required; status:") {
		t.Errorf("unexpected message: %q", got)
	}
}
