// Package server exposes the brokerage API over HTTP/JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sgcpro/sgc/internal/billing"
	"github.com/sgcpro/sgc/internal/blob"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/jobs"
	"github.com/sgcpro/sgc/internal/metrics"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/quote"
	"github.com/sgcpro/sgc/internal/store"
)

// BackupRunner runs one backup on demand.
type BackupRunner interface {
	RunOnce(ctx context.Context) error
}

// Options carries the optional collaborators of a Server. A nil field
// disables the endpoints that need it; they answer 503.
type Options struct {
	Blobs    blob.Store
	Quotes   *quote.Service
	Jobs     *jobs.Runner
	Backups  BackupRunner
	Chart    *billing.ChartOfAccounts
	Location *time.Location
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server implements the HTTP handlers of the API.
type Server struct {
	store     store.Store
	publisher events.Publisher
	blobs     blob.Store
	quotes    *quote.Service
	jobs      *jobs.Runner
	backups   BackupRunner
	chart     *billing.ChartOfAccounts
	loc       *time.Location
	logger    *slog.Logger
	now       func() time.Time
}

// New returns a Server backed by the given store and publisher.
func New(s store.Store, p events.Publisher, opts Options) *Server {
	srv := &Server{
		store:     s,
		publisher: p,
		blobs:     opts.Blobs,
		quotes:    opts.Quotes,
		jobs:      opts.Jobs,
		backups:   opts.Backups,
		chart:     opts.Chart,
		loc:       opts.Location,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if srv.publisher == nil {
		srv.publisher = &events.NoopPublisher{}
	}
	if srv.chart == nil {
		srv.chart = billing.DefaultChart()
	}
	if srv.loc == nil {
		srv.loc = time.UTC
	}
	if srv.logger == nil {
		srv.logger = slog.Default()
	}
	if srv.now == nil {
		srv.now = time.Now
	}
	return srv
}

// today is the current date in the configured zone.
func (s *Server) today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

// recordAndPublish persists an event to the store and publishes it on the bus.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *Server) recordAndPublish(ctx context.Context, topic, entityID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to marshal event", "topic", topic, "entity_id", entityID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:    topic,
		EntityID: entityID,
		Actor:    actor,
		Payload:  payload,
	}); err != nil {
		s.logger.Warn("failed to record event", "topic", topic, "entity_id", entityID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "entity_id", entityID, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }

// conflictError indicates a request that is valid but not allowed in the
// record's current state. Transport layers map this to 409.
type conflictError string

func (e conflictError) Error() string { return string(e) }

// errNotConfigured marks a feature whose backing service is not set up.
var errNotConfigured = errors.New("not configured")

// fail writes the response matching err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ie inputError
		ve *model.ValidationError
		ce conflictError
	)
	switch {
	case errors.As(err, &ie):
		writeError(w, http.StatusBadRequest, ie.Error())
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.As(err, &ce):
		writeError(w, http.StatusConflict, ce.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, errNotConfigured), errors.Is(err, metrics.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, quote.ErrNoJSON):
		writeError(w, http.StatusBadGateway, "model reply did not contain extracted data")
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
