// Package commission generates the commission receivable of a policy.
package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// ErrNoCommissionType is returned when the user has no Comissão/GANHO
// transaction type.
var ErrNoCommissionType = errors.New("no commission transaction type")

// Result statuses and reasons.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"

	ReasonAlreadyExists    = "already_exists"
	ReasonNoCommissionType = "no_commission_type"
	ReasonZeroCommission   = "zero_commission"
)

// Result is the outcome of generating the commission of one policy.
type Result struct {
	PolicyNumber  string             `json:"policyNumber,omitempty"`
	Status        string             `json:"status"`
	Reason        string             `json:"reason,omitempty"`
	Amount        float64            `json:"amount,omitempty"`
	TransactionID string             `json:"transaction_id,omitempty"`
	Transaction   *model.Transaction `json:"-"`
}

// Options tune Generate.
type Options struct {
	// Today is the date stamped on the transaction.
	Today model.Date
	// Retroactive marks commissions created by the backfill.
	Retroactive bool
}

// defaultTypes are created for every user on first use.
var defaultTypes = []struct {
	name   string
	nature model.TypeNature
}{
	{model.CommissionTypeName, model.TypeGain},
	{model.ExpenseTypeName, model.TypeLoss},
}

// EnsureDefaultTypes creates the Comissão and Despesa transaction types of
// userID when they are missing.
func EnsureDefaultTypes(ctx context.Context, s store.Store, userID string) error {
	existing, err := s.ListTransactionTypes(ctx, userID)
	if err != nil {
		return fmt.Errorf("list transaction types: %w", err)
	}
	for _, d := range defaultTypes {
		if findType(existing, d.name, d.nature) != nil {
			continue
		}
		tt := &model.TransactionType{
			ID:     idgen.New(idgen.TransactionType),
			UserID: userID,
			Name:   d.name,
			Nature: d.nature,
		}
		if err := s.CreateTransactionType(ctx, tt); err != nil && !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("create transaction type %s: %w", d.name, err)
		}
	}
	return nil
}

func findType(types []*model.TransactionType, name string, nature model.TypeNature) *model.TransactionType {
	for _, tt := range types {
		if tt.Name == name && tt.Nature == nature {
			return tt
		}
	}
	return nil
}

// Generate creates the commission transaction of p. It is idempotent: a
// policy that already has an income transaction is skipped. A missing
// commission type yields a Result with StatusError and ErrNoCommissionType.
//
// Run it inside RunInTransaction: the policy row stays locked until the
// transaction ends, so concurrent calls for one policy create a single
// commission.
func Generate(ctx context.Context, s store.Store, p *model.Policy, opts Options) (Result, error) {
	res := Result{PolicyNumber: p.PolicyNumber}

	if _, err := s.LockPolicy(ctx, p.UserID, p.ID); err != nil {
		return errorResult(res, err), fmt.Errorf("lock policy: %w", err)
	}

	existing, _, err := s.ListTransactions(ctx, model.TransactionFilter{
		UserID:   p.UserID,
		PolicyID: p.ID,
		Nature:   model.NatureIncome,
		Limit:    1,
	})
	if err != nil {
		return errorResult(res, err), fmt.Errorf("check existing commission: %w", err)
	}
	if len(existing) > 0 {
		res.Status, res.Reason = StatusSkipped, ReasonAlreadyExists
		return res, nil
	}

	types, err := s.ListTransactionTypes(ctx, p.UserID)
	if err != nil {
		return errorResult(res, err), fmt.Errorf("list transaction types: %w", err)
	}
	tt := findType(types, model.CommissionTypeName, model.TypeGain)
	if tt == nil {
		res.Status, res.Reason = StatusError, ReasonNoCommissionType
		return res, ErrNoCommissionType
	}

	amount := p.CommissionAmount()
	if amount <= 0 {
		res.Status, res.Reason = StatusSkipped, ReasonZeroCommission
		return res, nil
	}

	description := "Comissão da apólice " + p.PolicyNumber
	if opts.Retroactive {
		description += " (Retroativa)"
	}
	t := &model.Transaction{
		ID:              idgen.New(idgen.Transaction),
		UserID:          p.UserID,
		ClientID:        p.ClientID,
		PolicyID:        p.ID,
		TypeID:          tt.ID,
		CompanyID:       p.CompanyID,
		Description:     description,
		Amount:          amount,
		Date:            opts.Today,
		TransactionDate: opts.Today,
		DueDate:         p.ExpirationDate,
		Status:          model.TxPending,
		Nature:          model.NatureIncome,
		BrokerageID:     p.BrokerageID,
		ProducerID:      p.ProducerID,
	}
	if err := s.CreateTransaction(ctx, t); err != nil {
		return errorResult(res, err), fmt.Errorf("create commission transaction: %w", err)
	}

	res.Status = StatusSuccess
	res.Amount = amount
	res.TransactionID = t.ID
	res.Transaction = t
	return res, nil
}

func errorResult(res Result, err error) Result {
	res.Status, res.Reason = StatusError, err.Error()
	return res
}

// Summary counts the outcomes of a backfill run.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// BackfillReport is the response of Backfill.
type BackfillReport struct {
	Message string   `json:"message"`
	Summary Summary  `json:"summary"`
	Details []Result `json:"details"`
}

// Backfill generates the missing commissions of every active policy of
// every user. Per-policy failures are counted and do not stop the run.
func Backfill(ctx context.Context, s store.Store, today model.Date, logger *slog.Logger) (*BackfillReport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	policies, _, err := s.ListPolicies(ctx, model.PolicyFilter{Status: []model.PolicyStatus{model.PolicyActive}})
	if err != nil {
		return nil, fmt.Errorf("list active policies: %w", err)
	}

	report := &BackfillReport{Details: []Result{}}
	report.Summary.Total = len(policies)
	if len(policies) == 0 {
		report.Message = "Nenhuma apólice ativa encontrada."
		return report, nil
	}

	for _, p := range policies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var res Result
		err := s.RunInTransaction(ctx, func(tx store.Store) error {
			var err error
			res, err = Generate(ctx, tx, p, Options{Today: today, Retroactive: true})
			return err
		})
		switch res.Status {
		case StatusSuccess:
			report.Summary.Success++
		case StatusSkipped:
			report.Summary.Skipped++
		default:
			report.Summary.Errors++
			logger.Warn("commission backfill failed", "policy", p.ID, "user", p.UserID, "err", err)
		}
		report.Details = append(report.Details, res)
	}
	report.Message = "Backfill de comissões concluído com sucesso!"
	logger.Info("commission backfill finished",
		"total", report.Summary.Total, "success", report.Summary.Success,
		"skipped", report.Summary.Skipped, "errors", report.Summary.Errors)
	return report, nil
}
