// Package metrics consolidates each broker's daily production and pushes it
// to the reporting spreadsheet.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// Bucket names used by Classify.
const (
	BucketConsorcio   = "consorcio"
	BucketSaude       = "saude"
	BucketAuto        = "auto"
	BucketResidencial = "residencial"
	BucketEmpresarial = "empresarial"
	BucketOutros      = "outros"
)

var bucketKeywords = []struct {
	bucket   string
	keywords []string
}{
	{BucketConsorcio, []string{"consorcio", "consórcio"}},
	{BucketSaude, []string{"saude", "saúde"}},
	{BucketAuto, []string{"auto", "veiculo", "veículo"}},
	{BucketResidencial, []string{"residencial", "residencia", "residência"}},
	{BucketEmpresarial, []string{"empresarial", "empresa"}},
}

// Classify maps a classification key (ramo, type name or description) to
// its production bucket. The first matching bucket wins.
func Classify(key string) string {
	key = strings.ToLower(key)
	for _, b := range bucketKeywords {
		for _, kw := range b.keywords {
			if strings.Contains(key, kw) {
				return b.bucket
			}
		}
	}
	return BucketOutros
}

func add(m *model.DailyMetric, bucket string, amount float64) {
	switch bucket {
	case BucketConsorcio:
		m.Consorcio += amount
	case BucketSaude:
		m.Saude += amount
	case BucketAuto:
		m.Auto += amount
	case BucketResidencial:
		m.Residencial += amount
	case BucketEmpresarial:
		m.Empresarial += amount
	default:
		m.Outros += amount
	}
}

// Yesterday is the default day processed by the daily jobs.
func Yesterday(now time.Time) model.Date {
	return model.DateOf(now.UTC()).AddDays(-1)
}

// Consolidator builds the daily_metrics rows.
type Consolidator struct {
	Store  store.Store
	Logger *slog.Logger
}

// ConsolidationResult is returned by ConsolidateDay.
type ConsolidationResult struct {
	Consolidated int        `json:"consolidated"`
	Date         model.Date `json:"date"`
}

// ConsolidateDay creates the metric of date for every active profile that
// does not have one yet. Per-user failures are logged and skipped.
func (c *Consolidator) ConsolidateDay(ctx context.Context, date model.Date) (*ConsolidationResult, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	profiles, err := c.Store.ListProfiles(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}

	res := &ConsolidationResult{Date: date}
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := c.consolidateUser(ctx, p.ID, date)
		if err != nil {
			logger.Error("consolidate daily metric", "user", p.ID, "date", date, "err", err)
			continue
		}
		if created {
			res.Consolidated++
		}
	}
	logger.Info("daily metrics consolidated", "date", date, "count", res.Consolidated)
	return res, nil
}

func (c *Consolidator) consolidateUser(ctx context.Context, userID string, date model.Date) (bool, error) {
	existing, err := c.Store.ListDailyMetrics(ctx, model.DailyMetricFilter{UserID: userID, Date: date})
	if err != nil {
		return false, fmt.Errorf("check existing metric: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}

	m, err := c.Build(ctx, userID, date)
	if err != nil {
		return false, err
	}
	if err := c.Store.CreateDailyMetric(ctx, m); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return false, nil
		}
		return false, fmt.Errorf("insert metric: %w", err)
	}
	return true, nil
}

// Build computes the metric of userID on date without storing it.
func (c *Consolidator) Build(ctx context.Context, userID string, date model.Date) (*model.DailyMetric, error) {
	m := &model.DailyMetric{
		ID:         idgen.New(idgen.Metric),
		UserID:     userID,
		Date:       date,
		SyncStatus: model.SyncPending,
	}

	txs, _, err := c.Store.ListTransactions(ctx, model.TransactionFilter{
		UserID:   userID,
		Status:   []model.TransactionStatus{model.TxRealized},
		Nature:   model.NatureIncome,
		DateFrom: date,
		DateTo:   date,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) > 0 {
		types, err := c.Store.ListTransactionTypes(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list transaction types: %w", err)
		}
		typeNames := make(map[string]string, len(types))
		for _, tt := range types {
			typeNames[tt.ID] = tt.Name
		}
		ramos := map[string]string{}
		for _, t := range txs {
			key, err := c.classificationKey(ctx, t, typeNames, ramos)
			if err != nil {
				return nil, err
			}
			add(m, Classify(key), t.Amount)
		}
	}
	m.Consorcio = model.RoundCents(m.Consorcio)
	m.Saude = model.RoundCents(m.Saude)
	m.Auto = model.RoundCents(m.Auto)
	m.Residencial = model.RoundCents(m.Residencial)
	m.Empresarial = model.RoundCents(m.Empresarial)
	m.Outros = model.RoundCents(m.Outros)

	from := date.Time
	to := from.AddDate(0, 0, 1)
	policies, _, err := c.Store.ListPolicies(ctx, model.PolicyFilter{
		UserID:      userID,
		Status:      []model.PolicyStatus{model.PolicyActive},
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		return nil, fmt.Errorf("list policies: %w", err)
	}
	for _, p := range policies {
		if p.RenewalStatus == model.RenewalRenewed {
			m.Renewals++
		} else {
			m.NewPolicies++
		}
	}
	return m, nil
}

// classificationKey prefers the linked policy's ramo, then the type name,
// then the description. ramos caches policy lookups by policy id.
func (c *Consolidator) classificationKey(ctx context.Context, t *model.Transaction, typeNames, ramos map[string]string) (string, error) {
	if t.PolicyID != "" {
		ramo, ok := ramos[t.PolicyID]
		if !ok {
			p, err := c.Store.GetPolicy(ctx, t.UserID, t.PolicyID)
			switch {
			case err == nil:
				ramo = p.Type
			case errors.Is(err, store.ErrNotFound):
			default:
				return "", fmt.Errorf("get policy %s: %w", t.PolicyID, err)
			}
			ramos[t.PolicyID] = ramo
		}
		if ramo != "" {
			return ramo, nil
		}
	}
	if name := typeNames[t.TypeID]; name != "" {
		return name, nil
	}
	return t.Description, nil
}
