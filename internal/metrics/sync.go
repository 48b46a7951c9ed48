package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/locale"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// Appender appends rows to a spreadsheet. *sheets.Client implements it.
type Appender interface {
	Append(ctx context.Context, spreadsheetID, sheet string, rows [][]any) error
}

// Syncer pushes pending daily metrics to the spreadsheet.
type Syncer struct {
	Store         store.Store
	Sheets        Appender
	SpreadsheetID string
	SheetName     string
	Logger        *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// SyncResult is returned by Sync.
type SyncResult struct {
	Synced          int        `json:"synced"`
	Errors          int        `json:"errors"`
	Date            model.Date `json:"date"`
	ExecutionTimeMS int64      `json:"execution_time_ms"`
	Message         string     `json:"message,omitempty"`
}

// ErrNotConfigured is returned by Sync without a spreadsheet.
var ErrNotConfigured = errors.New("sheets sync is not configured")

// NoPendingMessage is reported when there is nothing to sync.
const NoPendingMessage = "Nenhuma métrica pendente"

// Row lays out a metric as a spreadsheet row: date, broker, the six
// buckets, the total, new policies, renewals and lost policies.
func Row(m *model.DailyMetric, broker string) []any {
	if broker == "" {
		broker = "N/A"
	}
	return []any{
		locale.Date(m.Date),
		broker,
		m.Consorcio,
		m.Saude,
		m.Auto,
		m.Residencial,
		m.Empresarial,
		m.Outros,
		m.Total(),
		m.NewPolicies,
		m.Renewals,
		m.LostPolicies,
	}
}

// Sync appends every pending metric of date and records a sync log per
// metric. Per-metric failures mark the metric as errored and do not stop
// the run.
func (s *Syncer) Sync(ctx context.Context, date model.Date) (*SyncResult, error) {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if s.Sheets == nil || s.SpreadsheetID == "" {
		return nil, ErrNotConfigured
	}
	start := now()

	pending, err := s.Store.ListDailyMetrics(ctx, model.DailyMetricFilter{Date: date, SyncStatus: model.SyncPending})
	if err != nil {
		return nil, fmt.Errorf("list pending metrics: %w", err)
	}
	res := &SyncResult{Date: date}
	if len(pending) == 0 {
		res.Message = NoPendingMessage
		res.ExecutionTimeMS = now().Sub(start).Milliseconds()
		return res, nil
	}

	var errs []string
	for _, m := range pending {
		broker := ""
		if p, err := s.Store.GetProfile(ctx, m.UserID); err == nil {
			broker = p.FullName
		}
		if err := s.Sheets.Append(ctx, s.SpreadsheetID, s.SheetName, [][]any{Row(m, broker)}); err != nil {
			name := broker
			if name == "" {
				name = "N/A"
			}
			errs = append(errs, fmt.Sprintf("Erro para %s: %v", name, err))
			logger.Warn("sync metric to sheets", "metric", m.ID, "user", m.UserID, "err", err)
			if uerr := s.Store.UpdateDailyMetricSync(ctx, m.ID, model.SyncError, nil, err.Error()); uerr != nil {
				logger.Error("mark metric as errored", "metric", m.ID, "err", uerr)
			}
			continue
		}
		syncedAt := now().UTC()
		if err := s.Store.UpdateDailyMetricSync(ctx, m.ID, model.SyncSynced, &syncedAt, ""); err != nil {
			logger.Error("mark metric as synced", "metric", m.ID, "err", err)
		}
		res.Synced++
	}
	res.Errors = len(errs)
	res.ExecutionTimeMS = now().Sub(start).Milliseconds()

	status, message := model.SyncLogSuccess, fmt.Sprintf("%d métricas sincronizadas", res.Synced)
	if len(errs) > 0 {
		status, message = model.SyncLogPartialSuccess, strings.Join(errs, "; ")
	}
	for _, m := range pending {
		l := &model.SheetsSyncLog{
			ID:              idgen.New(idgen.SyncLog),
			UserID:          m.UserID,
			SyncDate:        date,
			Status:          status,
			Message:         message,
			ExecutionTimeMS: res.ExecutionTimeMS,
		}
		if err := s.Store.CreateSheetsSyncLog(ctx, l); err != nil {
			logger.Error("record sheets sync log", "user", m.UserID, "err", err)
		}
	}
	logger.Info("metrics synced to sheets", "date", date, "synced", res.Synced, "errors", res.Errors)
	return res, nil
}
