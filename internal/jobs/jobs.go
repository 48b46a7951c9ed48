// Package jobs runs the brokerage batch jobs, on a cron schedule and on
// demand from the job endpoints.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sgcpro/sgc/internal/commission"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/metrics"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// Job names, as used in logs, events and the /v1/jobs/{name} endpoints.
const (
	JobConsolidate = "consolidate_metrics"
	JobSheetsSync  = "sheets_sync"
	JobBackfill    = "commission_backfill"
)

// Default cron schedules.
const (
	DefaultConsolidateSpec = "0 1 * * *"
	DefaultSheetsSpec      = "0 2 * * *"
)

// Runner executes the batch jobs and announces their results.
type Runner struct {
	Store        store.Store
	Consolidator *metrics.Consolidator
	Syncer       *metrics.Syncer
	Publisher    events.Publisher
	Logger       *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Yesterday is the default date of the daily jobs.
func (r *Runner) Yesterday() model.Date {
	return metrics.Yesterday(r.now())
}

func (r *Runner) announce(ctx context.Context, topic, job string, result any) {
	if r.Publisher == nil {
		return
	}
	if err := r.Publisher.Publish(ctx, topic, events.JobFinished{Job: job, Result: result}); err != nil {
		r.logger().Warn("failed to publish job event", "job", job, "err", err)
	}
}

// Consolidate builds the daily metrics of date.
func (r *Runner) Consolidate(ctx context.Context, date model.Date) (*metrics.ConsolidationResult, error) {
	res, err := r.Consolidator.ConsolidateDay(ctx, date)
	if err != nil {
		return nil, err
	}
	r.announce(ctx, events.TopicMetricsConsolidated, JobConsolidate, res)
	return res, nil
}

// SyncSheets pushes the pending metrics of date to the spreadsheet.
func (r *Runner) SyncSheets(ctx context.Context, date model.Date) (*metrics.SyncResult, error) {
	if r.Syncer == nil {
		return nil, metrics.ErrNotConfigured
	}
	res, err := r.Syncer.Sync(ctx, date)
	if err != nil {
		return nil, err
	}
	r.announce(ctx, events.TopicMetricsSynced, JobSheetsSync, res)
	return res, nil
}

// BackfillCommissions generates the missing commissions of active policies.
func (r *Runner) BackfillCommissions(ctx context.Context) (*commission.BackfillReport, error) {
	rep, err := commission.Backfill(ctx, r.Store, model.DateOf(r.now()), r.logger())
	if err != nil {
		return nil, err
	}
	r.announce(ctx, events.TopicCommissionBackfilled, JobBackfill, rep.Summary)
	return rep, nil
}

// Schedule holds the cron expressions of the daily jobs. An empty
// expression disables the job.
type Schedule struct {
	Consolidate string
	SheetsSync  string
	Location    *time.Location
}

// Scheduler triggers the daily jobs with robfig/cron. A run that is still
// going when its next tick arrives makes the tick a no-op.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
}

// NewScheduler registers the jobs of sched. It fails on an invalid cron
// expression.
func NewScheduler(r *Runner, sched Schedule) (*Scheduler, error) {
	loc := sched.Location
	if loc == nil {
		loc = time.UTC
	}
	log := cronLogger{r.logger()}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	s := &Scheduler{cron: c, runner: r}

	if sched.Consolidate != "" {
		if _, err := c.AddFunc(sched.Consolidate, s.consolidate); err != nil {
			return nil, fmt.Errorf("consolidate schedule %q: %w", sched.Consolidate, err)
		}
	}
	if sched.SheetsSync != "" && r.Syncer != nil {
		if _, err := c.AddFunc(sched.SheetsSync, s.syncSheets); err != nil {
			return nil, fmt.Errorf("sheets schedule %q: %w", sched.SheetsSync, err)
		}
	}
	return s, nil
}

func (s *Scheduler) consolidate() {
	ctx := context.Background()
	if _, err := s.runner.Consolidate(ctx, s.runner.Yesterday()); err != nil {
		s.runner.logger().Error("scheduled job failed", "job", JobConsolidate, "err", err)
	}
}

func (s *Scheduler) syncSheets() {
	ctx := context.Background()
	if _, err := s.runner.SyncSheets(ctx, s.runner.Yesterday()); err != nil {
		s.runner.logger().Error("scheduled job failed", "job", JobSheetsSync, "err", err)
	}
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
