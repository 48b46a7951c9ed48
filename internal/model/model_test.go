package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPolicyStatus_IsValid(t *testing.T) {
	for _, tc := range []struct {
		status PolicyStatus
		want   bool
	}{
		{PolicyQuote, true},
		{PolicyAwaitingIssue, true},
		{PolicyActive, true},
		{PolicyCancelled, true},
		{PolicyRenewed, true},
		{PolicyStatus(""), false},
		{PolicyStatus("ativa"), false},
	} {
		if got := tc.status.IsValid(); got != tc.want {
			t.Errorf("PolicyStatus(%q).IsValid() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestTransactionStatus_IsValid(t *testing.T) {
	for _, tc := range []struct {
		status TransactionStatus
		want   bool
	}{
		{TxPending, true},
		{TxPartialPaid, true},
		{TxPaid, true},
		{TxRealized, true},
		{TransactionStatus("CANCELADO"), false},
	} {
		if got := tc.status.IsValid(); got != tc.want {
			t.Errorf("TransactionStatus(%q).IsValid() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestClaimStatus_CanTransition(t *testing.T) {
	for _, tc := range []struct {
		from, to ClaimStatus
		want     bool
	}{
		{ClaimOpen, ClaimAnalysis, true},
		{ClaimOpen, ClaimApproved, false},
		{ClaimAnalysis, ClaimApproved, true},
		{ClaimAnalysis, ClaimDenied, true},
		{ClaimApproved, ClaimFinalized, true},
		{ClaimDenied, ClaimFinalized, true},
		{ClaimDenied, ClaimApproved, false},
		{ClaimFinalized, ClaimOpen, false},
	} {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Errorf("%q -> %q = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestClaimType_IsValid(t *testing.T) {
	if !ClaimType("Danos Elétricos").IsValid() {
		t.Error("expected Danos Elétricos to be valid")
	}
	if ClaimType("Terremoto").IsValid() {
		t.Error("expected Terremoto to be invalid")
	}
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d,omitzero"`
	}

	data, err := json.Marshal(wrapper{D: NewDate(2024, time.February, 29)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"d":"2024-02-29"}` {
		t.Errorf("got %s", data)
	}

	data, _ = json.Marshal(wrapper{})
	if string(data) != `{}` {
		t.Errorf("zero date: got %s, want {}", data)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"d":"2024-03-31T10:00:00Z"}`), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if w.D.String() != "2024-03-31" {
		t.Errorf("got %s, want 2024-03-31", w.D)
	}

	if err := json.Unmarshal([]byte(`{"d":"31/03/2024"}`), &w); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan time: %v", err)
	}
	if d.String() != "2024-05-10" {
		t.Errorf("got %s", d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Errorf("Scan nil: %v, zero=%v", err, d.IsZero())
	}
	if err := d.Scan([]byte("2023-12-01")); err != nil || d.String() != "2023-12-01" {
		t.Errorf("Scan bytes: %v, %s", err, d)
	}
	v, _ := Date{}.Value()
	if v != nil {
		t.Errorf("zero Value() = %v, want nil", v)
	}
}

func TestPolicy_CommissionAmount(t *testing.T) {
	for _, tc := range []struct {
		premium, rate, want float64
	}{
		{1000, 10, 100},
		{1234.56, 15, 185.18},
		{200, 12.5, 25},
		{0, 20, 0},
	} {
		p := Policy{PremiumValue: tc.premium, CommissionRate: tc.rate}
		if got := p.CommissionAmount(); got != tc.want {
			t.Errorf("CommissionAmount(%v, %v) = %v, want %v", tc.premium, tc.rate, got, tc.want)
		}
	}
}

func TestPolicy_Renewal(t *testing.T) {
	today := NewDate(2024, time.June, 1)

	p := Policy{ExpirationDate: NewDate(2024, time.July, 1)}
	if p.Renewal(today) != nil {
		t.Error("expected nil renewal without automatic_renewal")
	}

	p.AutomaticRenewal = true
	r := p.Renewal(today)
	if r == nil {
		t.Fatal("expected renewal info")
	}
	if r.Date.String() != "2024-06-16" {
		t.Errorf("renewal date = %s, want 2024-06-16", r.Date)
	}
	if r.DaysUntil != 15 || !r.Upcoming {
		t.Errorf("days=%d upcoming=%v, want 15 true", r.DaysUntil, r.Upcoming)
	}

	p.ExpirationDate = NewDate(2024, time.December, 1)
	if r := p.Renewal(today); r.Upcoming {
		t.Errorf("renewal %d days away should not be upcoming", r.DaysUntil)
	}
}

func TestAppointment_StartsAt(t *testing.T) {
	a := Appointment{Date: NewDate(2024, time.January, 31), Time: "14:30"}
	got, err := a.StartsAt()
	if err != nil {
		t.Fatalf("StartsAt: %v", err)
	}
	want := time.Date(2024, 1, 31, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	a.Time = "14:30:00"
	if got, _ := a.StartsAt(); !got.Equal(want) {
		t.Errorf("HH:MM:SS: got %v, want %v", got, want)
	}

	a.Time = "2pm"
	if _, err := a.StartsAt(); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestAppointment_SeriesRoot(t *testing.T) {
	a := Appointment{ID: "agd-1"}
	if a.SeriesRoot() != "agd-1" {
		t.Errorf("got %q, want agd-1", a.SeriesRoot())
	}
	a.ParentAppointmentID = "agd-0"
	if a.SeriesRoot() != "agd-0" {
		t.Errorf("got %q, want agd-0", a.SeriesRoot())
	}
}
