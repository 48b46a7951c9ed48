package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sgcpro/sgc/internal/locale"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// statusText colors a status by whether it is settled, open or lost.
func statusText(status string) string {
	if !ui.ShouldUseColor() {
		return status
	}
	switch status {
	case string(model.PolicyActive), string(model.TxPaid), string(model.TxRealized),
		string(model.AppointmentDone), string(model.ClaimApproved), string(model.ClientActive):
		return ui.RenderOK(status)
	case string(model.PolicyCancelled), string(model.AppointmentCancelled), string(model.ClaimDenied):
		return ui.RenderFail(status)
	case string(model.TxPending), string(model.TxPartialPaid), string(model.PolicyAwaitingIssue), string(model.ClaimOpen):
		return ui.RenderWarn(status)
	}
	return status
}

func printClientTable(w io.Writer, c *model.Client) {
	fmt.Fprintf(w, "ID:          %s\n", c.ID)
	fmt.Fprintf(w, "Name:        %s\n", c.Name)
	fmt.Fprintf(w, "Status:      %s\n", statusText(string(c.Status)))
	if c.Email != "" {
		fmt.Fprintf(w, "Email:       %s\n", c.Email)
	}
	if c.Phone != "" {
		fmt.Fprintf(w, "Phone:       %s\n", c.Phone)
	}
	if c.CPFCNPJ != "" {
		fmt.Fprintf(w, "CPF/CNPJ:    %s\n", c.CPFCNPJ)
	}
	if !c.BirthDate.IsZero() {
		fmt.Fprintf(w, "Birth Date:  %s\n", locale.Date(c.BirthDate))
	}
	if c.Address != "" {
		fmt.Fprintf(w, "Address:     %s\n", c.Address)
	}
	if c.Observations != "" {
		fmt.Fprintf(w, "Notes:       %s\n", c.Observations)
	}
	fmt.Fprintf(w, "Created At:  %s\n", c.CreatedAt.Format("2006-01-02 15:04:05"))
}

func printClientList(w io.Writer, clients []*model.Client) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPHONE\tEMAIL\tBIRTH DATE")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, truncate(c.Name, 40), statusText(string(c.Status)), c.Phone, c.Email, locale.Date(c.BirthDate))
	}
	tw.Flush()
}

func printPolicyTable(w io.Writer, p *model.Policy) {
	fmt.Fprintf(w, "ID:          %s\n", p.ID)
	fmt.Fprintf(w, "Number:      %s\n", p.PolicyNumber)
	fmt.Fprintf(w, "Client:      %s\n", p.ClientID)
	fmt.Fprintf(w, "Status:      %s\n", statusText(string(p.Status)))
	if p.Type != "" {
		fmt.Fprintf(w, "Ramo:        %s\n", p.Type)
	}
	if p.CompanyID != "" {
		fmt.Fprintf(w, "Insurer:     %s\n", p.CompanyID)
	}
	if p.InsuredAsset != "" {
		fmt.Fprintf(w, "Asset:       %s\n", p.InsuredAsset)
	}
	fmt.Fprintf(w, "Premium:     %s\n", locale.BRL(p.PremiumValue))
	fmt.Fprintf(w, "Commission:  %s%% (%s)\n", locale.Decimal(p.CommissionRate), locale.BRL(p.CommissionAmount()))
	fmt.Fprintf(w, "Term:        %s - %s\n", locale.Date(p.StartDate), locale.Date(p.ExpirationDate))
	fmt.Fprintf(w, "Auto Renew:  %t\n", p.AutomaticRenewal)
	if p.RenewalStatus != "" {
		fmt.Fprintf(w, "Renewal:     %s\n", p.RenewalStatus)
	}
}

func printPolicyList(w io.Writer, items []*policyRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNUMBER\tSTATUS\tRAMO\tPREMIUM\tEXPIRES\tDAYS")
	for _, it := range items {
		days := ""
		if it.days != nil {
			days = fmt.Sprintf("%d", *it.days)
			if *it.days <= 7 && ui.ShouldUseColor() {
				days = ui.RenderWarn(days)
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			it.p.ID, it.p.PolicyNumber, statusText(string(it.p.Status)), it.p.Type,
			locale.BRL(it.p.PremiumValue), locale.Date(it.p.ExpirationDate), days)
	}
	tw.Flush()
}

// policyRow pairs a listed policy with its days to expiration, if known.
type policyRow struct {
	p    *model.Policy
	days *int
}

func printTransactionList(w io.Writer, items []*transactionRow) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tNATURE\tSTATUS\tAMOUNT\tPAID\tTITLE")
	for _, it := range items {
		t := it.t
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, locale.Date(t.Date), t.Nature, statusText(string(t.Status)),
			locale.BRL(t.Amount), locale.BRL(t.PaidAmount), truncate(it.title, 50))
	}
	tw.Flush()
}

type transactionRow struct {
	t     *model.Transaction
	title string
}

func printAppointmentList(w io.Writer, appts []*model.Appointment) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tSTATUS\tRECURS\tTITLE")
	for _, a := range appts {
		recurs := ""
		if a.IsRecurring {
			recurs = a.RecurrenceRule
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, locale.Date(a.Date), a.Time, statusText(string(a.Status)), truncate(recurs, 30), truncate(a.Title, 50))
	}
	tw.Flush()
}

func printClaimList(w io.Writer, claims []*model.Claim) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPOLICY\tTYPE\tSTATUS\tPRIORITY\tOCCURRED\tAMOUNT")
	for _, c := range claims {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.PolicyID, c.ClaimType, statusText(string(c.Status)), c.Priority,
			locale.Date(c.OccurrenceDate), locale.BRL(c.ClaimAmount))
	}
	tw.Flush()
}

func printEventList(w io.Writer, evs []*model.Event) {
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tTOPIC\tACTOR")
	for _, e := range evs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Topic, e.Actor)
	}
	tw.Flush()
}
