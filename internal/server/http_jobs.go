package server

import (
	"fmt"
	"net/http"

	"github.com/sgcpro/sgc/internal/model"
)

// jobDate reads ?date=, defaulting to yesterday.
func (s *Server) jobDate(r *http.Request) (model.Date, error) {
	d, err := queryDate(r.URL.Query(), "date")
	if err != nil {
		return model.Date{}, err
	}
	if d.IsZero() {
		d = s.jobs.Yesterday()
	}
	return d, nil
}

// handleConsolidateJob handles POST /v1/jobs/consolidate?date=.
func (s *Server) handleConsolidateJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.fail(w, r, fmt.Errorf("jobs %w", errNotConfigured))
		return
	}
	date, err := s.jobDate(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.jobs.Consolidate(r.Context(), date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSheetsSyncJob handles POST /v1/jobs/sheets-sync?date=.
func (s *Server) handleSheetsSyncJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.fail(w, r, fmt.Errorf("jobs %w", errNotConfigured))
		return
	}
	date, err := s.jobDate(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.jobs.SyncSheets(r.Context(), date)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleBackfillJob handles POST /v1/jobs/backfill.
func (s *Server) handleBackfillJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		s.fail(w, r, fmt.Errorf("jobs %w", errNotConfigured))
		return
	}
	rep, err := s.jobs.BackfillCommissions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleBackupJob handles POST /v1/jobs/backup.
func (s *Server) handleBackupJob(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		s.fail(w, r, fmt.Errorf("backups %w", errNotConfigured))
		return
	}
	if err := s.backups.RunOnce(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
