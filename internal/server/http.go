package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered,
// wrapped in auth, request logging and panic recovery.
func (s *Server) NewHTTPHandler(auth AuthConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	mux.HandleFunc("POST /v1/clients", s.handleCreateClient)
	mux.HandleFunc("GET /v1/clients", s.handleListClients)
	mux.HandleFunc("GET /v1/clients/duplicates", s.handleClientDuplicates)
	mux.HandleFunc("GET /v1/clients/kpis", s.handleClientKPIs)
	mux.HandleFunc("GET /v1/clients/birthdays", s.handleClientBirthdays)
	mux.HandleFunc("GET /v1/clients/export.csv", s.handleExportClients)
	mux.HandleFunc("GET /v1/clients/{id}", s.handleGetClient)
	mux.HandleFunc("PATCH /v1/clients/{id}", s.handleUpdateClient)
	mux.HandleFunc("DELETE /v1/clients/{id}", s.handleDeleteClient)

	mux.HandleFunc("POST /v1/policies", s.handleCreatePolicy)
	mux.HandleFunc("GET /v1/policies", s.handleListPolicies)
	mux.HandleFunc("GET /v1/policies/expiring", s.handleExpiringPolicies)
	mux.HandleFunc("GET /v1/policies/{id}", s.handleGetPolicy)
	mux.HandleFunc("PATCH /v1/policies/{id}", s.handleUpdatePolicy)
	mux.HandleFunc("DELETE /v1/policies/{id}", s.handleDeletePolicy)
	mux.HandleFunc("POST /v1/policies/{id}/activate", s.handleActivatePolicy)
	mux.HandleFunc("POST /v1/policies/{id}/cancel", s.handleCancelPolicy)
	mux.HandleFunc("POST /v1/policies/{id}/renew", s.handleRenewPolicy)
	mux.HandleFunc("PUT /v1/policies/{id}/document", s.handlePutPolicyDocument)
	mux.HandleFunc("GET /v1/policies/{id}/document", s.handleGetPolicyDocument)

	mux.HandleFunc("GET /v1/transaction-types", s.handleListTransactionTypes)
	mux.HandleFunc("POST /v1/transaction-types", s.handleCreateTransactionType)
	mux.HandleFunc("POST /v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PATCH /v1/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /v1/transactions/{id}/payments", s.handleCreatePayment)
	mux.HandleFunc("GET /v1/transactions/{id}/payments", s.handleListPayments)

	mux.HandleFunc("POST /v1/billing", s.handleCreateBillingEntry)
	mux.HandleFunc("GET /v1/billing", s.handleListBillingEntries)
	mux.HandleFunc("GET /v1/billing/metrics", s.handleBillingMetrics)
	mux.HandleFunc("GET /v1/billing/accounts", s.handleChartOfAccounts)
	mux.HandleFunc("GET /v1/billing/{id}", s.handleGetBillingEntry)
	mux.HandleFunc("PATCH /v1/billing/{id}", s.handleUpdateBillingEntry)
	mux.HandleFunc("DELETE /v1/billing/{id}", s.handleDeleteBillingEntry)

	mux.HandleFunc("POST /v1/appointments", s.handleCreateAppointment)
	mux.HandleFunc("GET /v1/appointments", s.handleListAppointments)
	mux.HandleFunc("GET /v1/appointments/calendar.ics", s.handleAppointmentsICS)
	mux.HandleFunc("GET /v1/appointments/{id}", s.handleGetAppointment)
	mux.HandleFunc("PATCH /v1/appointments/{id}", s.handleUpdateAppointment)
	mux.HandleFunc("DELETE /v1/appointments/{id}", s.handleDeleteAppointment)
	mux.HandleFunc("POST /v1/appointments/{id}/complete", s.handleCompleteAppointment)
	mux.HandleFunc("GET /v1/appointments/{id}/occurrences", s.handleAppointmentOccurrences)

	mux.HandleFunc("POST /v1/claims", s.handleCreateClaim)
	mux.HandleFunc("GET /v1/claims", s.handleListClaims)
	mux.HandleFunc("GET /v1/claims/{id}", s.handleGetClaim)
	mux.HandleFunc("PATCH /v1/claims/{id}", s.handleUpdateClaim)
	mux.HandleFunc("DELETE /v1/claims/{id}", s.handleDeleteClaim)
	mux.HandleFunc("POST /v1/claims/{id}/status", s.handleClaimStatus)

	mux.HandleFunc("GET /v1/producers", s.handleListProducers)
	mux.HandleFunc("POST /v1/producers", s.handleCreateProducer)
	mux.HandleFunc("PUT /v1/producers/{id}", s.handleUpdateProducer)
	mux.HandleFunc("DELETE /v1/producers/{id}", s.handleDeleteProducer)
	mux.HandleFunc("GET /v1/companies", s.handleListCompanies)
	mux.HandleFunc("POST /v1/companies", s.handleCreateCompany)
	mux.HandleFunc("PUT /v1/companies/{id}", s.handleUpdateCompany)
	mux.HandleFunc("DELETE /v1/companies/{id}", s.handleDeleteCompany)
	mux.HandleFunc("GET /v1/ramos", s.handleListRamos)
	mux.HandleFunc("GET /v1/ramos/infer", s.handleInferRamo)
	mux.HandleFunc("POST /v1/ramos", s.handleCreateRamo)
	mux.HandleFunc("PUT /v1/ramos/{id}", s.handleUpdateRamo)
	mux.HandleFunc("DELETE /v1/ramos/{id}", s.handleDeleteRamo)

	mux.HandleFunc("GET /v1/profile", s.handleGetProfile)
	mux.HandleFunc("PUT /v1/profile", s.handlePutProfile)

	mux.HandleFunc("POST /v1/quotes/extract", s.handleExtractQuote)

	mux.HandleFunc("GET /v1/reports/policies", s.handlePolicyReport)
	mux.HandleFunc("GET /v1/reports/metadata", s.handleReportMetadata)
	mux.HandleFunc("GET /v1/reports/billing", s.handleBillingReport)

	mux.HandleFunc("GET /v1/events/{entity_id}", s.handleGetEvents)

	mux.HandleFunc("POST /v1/jobs/consolidate", requireService(s.handleConsolidateJob))
	mux.HandleFunc("POST /v1/jobs/sheets-sync", requireService(s.handleSheetsSyncJob))
	mux.HandleFunc("POST /v1/jobs/backfill", requireService(s.handleBackfillJob))
	mux.HandleFunc("POST /v1/jobs/backup", requireService(s.handleBackupJob))

	var h http.Handler = mux
	h = AuthMiddleware(auth, h)
	h = LoggingMiddleware(s.logger, h)
	return RecoveryMiddleware(s.logger, h)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetEvents handles GET /v1/events/{entity_id}. Only events whose
// entity belongs to the caller are visible, so the entity is looked up
// through the caller's records first.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("entity_id")
	if err := s.checkOwned(r, uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	evts, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}

// checkOwned looks the entity up by its id prefix.
func (s *Server) checkOwned(r *http.Request, uid, id string) error {
	ctx := r.Context()
	var err error
	switch {
	case strings.HasPrefix(id, string(idgen.Client)):
		_, err = s.store.GetClient(ctx, uid, id)
	case strings.HasPrefix(id, string(idgen.Policy)):
		_, err = s.store.GetPolicy(ctx, uid, id)
	case strings.HasPrefix(id, string(idgen.Transaction)):
		_, err = s.store.GetTransaction(ctx, uid, id)
	case strings.HasPrefix(id, string(idgen.BillingEntry)):
		_, err = s.store.GetBillingEntry(ctx, uid, id)
	case strings.HasPrefix(id, string(idgen.Appointment)):
		_, err = s.store.GetAppointment(ctx, uid, id)
	case strings.HasPrefix(id, string(idgen.Claim)):
		_, err = s.store.GetClaim(ctx, uid, id)
	default:
		err = inputError("unsupported entity id " + strconv.Quote(id))
	}
	return err
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes the JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return inputError("invalid JSON body")
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	v := q.Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, inputError(key + " must be an integer")
	}
	return n, nil
}

// queryDate parses a YYYY-MM-DD query parameter; absent means the zero date.
func queryDate(q url.Values, key string) (model.Date, error) {
	d, err := model.ParseDate(q.Get(key))
	if err != nil {
		return model.Date{}, inputError(key + ": " + err.Error())
	}
	return d, nil
}

// queryList splits a comma separated query parameter.
func queryList(q url.Values, key string) []string {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// page reads limit and offset.
func page(q url.Values) (limit, offset int, err error) {
	if limit, err = queryInt(q, "limit", 0); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(q, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// nonNil keeps empty lists from encoding as null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
