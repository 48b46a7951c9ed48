package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	rawPath     string // URL-encoded path (for testing PathEscape)
	query       string
	body        string
	contentType string
	auth        string
	user        string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.rawPath = r.URL.RawPath
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.auth = r.Header.Get("Authorization")
	h.user = r.Header.Get(UserHeader)
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler, opts ...Option) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, opts...)
	return c, srv
}

func TestHTTPClient_Headers(t *testing.T) {
	h := &testHandler{responseBody: `{"status":"ok"}`}
	c, srv := newTestClient(h, WithToken("svc-token"), WithUser("user-1"))
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q, want ok", status)
	}
	if h.auth != "Bearer svc-token" {
		t.Errorf("authorization = %q, want 'Bearer svc-token'", h.auth)
	}
	if h.user != "user-1" {
		t.Errorf("user header = %q, want user-1", h.user)
	}
}

func TestHTTPClient_NoTokenNoHeaders(t *testing.T) {
	h := &testHandler{responseBody: `{"status":"ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.auth != "" || h.user != "" {
		t.Errorf("expected no auth headers, got %q / %q", h.auth, h.user)
	}
}

func TestHTTPClient_CreateClient(t *testing.T) {
	h := &testHandler{
		statusCode: http.StatusCreated,
		responseBody: `{
			"id": "cli-abc",
			"user_id": "user-1",
			"name": "Maria Souza",
			"email": "maria@example.com",
			"birth_date": "1985-04-12",
			"status": "Ativo",
			"created_at": "2025-03-10T12:00:00Z",
			"updated_at": "2025-03-10T12:00:00Z"
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	name, email, birth := "Maria Souza", "maria@example.com", "1985-04-12"
	cl, err := c.CreateClient(context.Background(), &ClientRequest{Name: &name, Email: &email, BirthDate: &birth})
	if err != nil {
		t.Fatalf("CreateClient() error = %v", err)
	}

	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/clients" {
		t.Errorf("path = %q, want /v1/clients", h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", h.contentType)
	}
	var reqBody map[string]any
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["name"] != "Maria Souza" || reqBody["birth_date"] != "1985-04-12" {
		t.Errorf("unexpected request body %v", reqBody)
	}
	if _, ok := reqBody["phone"]; ok {
		t.Error("unset phone should be omitted")
	}

	if cl.ID != "cli-abc" || cl.Name != "Maria Souza" {
		t.Errorf("unexpected client %+v", cl)
	}
	if cl.BirthDate.String() != "1985-04-12" {
		t.Errorf("birth date = %s, want 1985-04-12", cl.BirthDate)
	}
}

func TestHTTPClient_GetClient_URLEscaping(t *testing.T) {
	h := &testHandler{responseBody: `{"id":"cli a/b","name":"x","status":"Ativo"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.GetClient(context.Background(), "cli a/b"); err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if h.rawPath != "/v1/clients/cli%20a%2Fb" {
		t.Errorf("raw path = %q, want /v1/clients/cli%%20a%%2Fb", h.rawPath)
	}
}

func TestHTTPClient_ListClients(t *testing.T) {
	h := &testHandler{responseBody: `{"clients":[{"id":"cli-1","name":"Ana","status":"Ativo"}],"total":7}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ListClients(context.Background(), &ListClientsRequest{Search: "ana", Status: "Ativo", Limit: 1, Offset: 2})
	if err != nil {
		t.Fatalf("ListClients() error = %v", err)
	}
	q, _ := url.ParseQuery(h.query)
	if q.Get("search") != "ana" || q.Get("status") != "Ativo" || q.Get("limit") != "1" || q.Get("offset") != "2" {
		t.Errorf("unexpected query %q", h.query)
	}
	if q.Has("seguradora") {
		t.Error("empty filters should be omitted")
	}
	if resp.Total != 7 || len(resp.Clients) != 1 || resp.Clients[0].Name != "Ana" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHTTPClient_DeleteClient(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.DeleteClient(context.Background(), "cli-1"); err != nil {
		t.Fatalf("DeleteClient() error = %v", err)
	}
	if h.method != http.MethodDelete || h.path != "/v1/clients/cli-1" {
		t.Errorf("got %s %s", h.method, h.path)
	}
}

func TestHTTPClient_ListPolicies(t *testing.T) {
	h := &testHandler{responseBody: `{
		"policies": [{
			"id": "apo-1",
			"client_id": "cli-1",
			"status": "Ativa",
			"premium_value": 1000,
			"commission_rate": 10,
			"expiration_date": "2025-04-01",
			"renewal": {"date": "2025-04-01", "days_until": 22, "upcoming": true},
			"days_until_expiration": 22
		}],
		"total": 1
	}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ListPolicies(context.Background(), &ListPoliciesRequest{Status: []string{"Ativa", "Aguardando Apólice"}})
	if err != nil {
		t.Fatalf("ListPolicies() error = %v", err)
	}
	q, _ := url.ParseQuery(h.query)
	if q.Get("status") != "Ativa,Aguardando Apólice" {
		t.Errorf("status query = %q", q.Get("status"))
	}
	if len(resp.Policies) != 1 {
		t.Fatalf("expected 1 policy, got %d", len(resp.Policies))
	}
	p := resp.Policies[0]
	if p.ID != "apo-1" || p.Renewal == nil || !p.Renewal.Upcoming {
		t.Errorf("unexpected policy %+v", p)
	}
	if p.DaysUntilExpiration == nil || *p.DaysUntilExpiration != 22 {
		t.Errorf("days until expiration = %v, want 22", p.DaysUntilExpiration)
	}
}

func TestHTTPClient_ActivatePolicy(t *testing.T) {
	h := &testHandler{responseBody: `{
		"policy": {"id": "apo-1", "status": "Ativa"},
		"commission": {"id": "trx-1", "amount": 100, "status": "PENDENTE", "nature": "RECEITA"}
	}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ActivatePolicy(context.Background(), "apo-1")
	if err != nil {
		t.Fatalf("ActivatePolicy() error = %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/policies/apo-1/activate" {
		t.Errorf("got %s %s", h.method, h.path)
	}
	if resp.Commission == nil || resp.Commission.Amount != 100 {
		t.Errorf("unexpected commission %+v", resp.Commission)
	}
}

func TestHTTPClient_CreatePayment(t *testing.T) {
	h := &testHandler{
		statusCode: http.StatusCreated,
		responseBody: `{
			"payment": {"id": "pag-1", "transaction_id": "trx-1", "amount": 50, "payment_date": "2025-03-10"},
			"transaction": {"id": "trx-1", "amount": 100, "paid_amount": 50, "status": "PARCIALMENTE_PAGO", "display_title": "Comissão - Maria"}
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.CreatePayment(context.Background(), "trx-1", &PaymentRequest{Amount: 50})
	if err != nil {
		t.Fatalf("CreatePayment() error = %v", err)
	}
	if h.path != "/v1/transactions/trx-1/payments" {
		t.Errorf("path = %q", h.path)
	}
	if resp.Transaction.PaidAmount != 50 || resp.Transaction.DisplayTitle != "Comissão - Maria" {
		t.Errorf("unexpected transaction %+v", resp.Transaction)
	}
}

func TestHTTPClient_CompleteAppointment(t *testing.T) {
	h := &testHandler{responseBody: `{
		"appointment": {"id": "agd-1", "status": "Realizado"},
		"next_appointment": {"id": "agd-2", "date": "2025-03-17", "parent_appointment_id": "agd-1"},
		"next_date": "2025-03-17"
	}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.CompleteAppointment(context.Background(), "agd-1", "")
	if err != nil {
		t.Fatalf("CompleteAppointment() error = %v", err)
	}
	if h.body != "" {
		t.Errorf("expected no body without a rule, got %q", h.body)
	}
	if resp.Next == nil || resp.Next.ParentAppointmentID != "agd-1" {
		t.Errorf("unexpected next %+v", resp.Next)
	}
	if resp.NextDate == nil || resp.NextDate.String() != "2025-03-17" {
		t.Errorf("next date = %v", resp.NextDate)
	}

	if _, err := c.CompleteAppointment(context.Background(), "agd-1", "FREQ=WEEKLY"); err != nil {
		t.Fatalf("CompleteAppointment() error = %v", err)
	}
	if h.body != `{"recurrence_rule":"FREQ=WEEKLY"}` {
		t.Errorf("body = %q", h.body)
	}
}

func TestHTTPClient_Calendar(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = io.WriteString(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	})
	c, srv := newTestClient(h)
	defer srv.Close()

	var buf bytes.Buffer
	if err := c.Calendar(context.Background(), &buf); err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if buf.String() != "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n" {
		t.Errorf("unexpected calendar %q", buf.String())
	}
}

func TestHTTPClient_PolicyReport(t *testing.T) {
	h := &testHandler{responseBody: "Apólice;Cliente\n"}
	c, srv := newTestClient(h)
	defer srv.Close()

	var buf bytes.Buffer
	err := c.PolicyReport(context.Background(), &PolicyReportRequest{
		From: "2025-01-01", Ramos: []string{"Auto", "Vida"}, Format: "csv",
	}, &buf)
	if err != nil {
		t.Fatalf("PolicyReport() error = %v", err)
	}
	q, _ := url.ParseQuery(h.query)
	if q.Get("from") != "2025-01-01" || q.Get("ramos") != "Auto,Vida" || q.Get("format") != "csv" {
		t.Errorf("unexpected query %q", h.query)
	}
	if buf.String() != "Apólice;Cliente\n" {
		t.Errorf("body = %q", buf.String())
	}
}

func TestHTTPClient_Jobs(t *testing.T) {
	h := &testHandler{responseBody: `{"consolidated": 3, "date": "2025-03-09"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	res, err := c.Consolidate(context.Background(), "2025-03-09")
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/jobs/consolidate" || h.query != "date=2025-03-09" {
		t.Errorf("got %s %s?%s", h.method, h.path, h.query)
	}
	if res.Consolidated != 3 {
		t.Errorf("consolidated = %d, want 3", res.Consolidated)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	for _, tc := range []struct {
		name string
		h    http.Handler
		code int
		msg  string
	}{
		{"json error", &testHandler{statusCode: http.StatusConflict, responseBody: `{"error":"appointment is already completed"}`}, 409, "appointment is already completed"},
		{"plain error", &testHandler{statusCode: http.StatusBadGateway, responseBody: "upstream down\n"}, 502, "upstream down"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c, srv := newTestClient(tc.h)
			defer srv.Close()

			_, err := c.CompleteAppointment(context.Background(), "agd-1", "")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tc.code || apiErr.Message != tc.msg {
				t.Errorf("got %d %q, want %d %q", apiErr.StatusCode, apiErr.Message, tc.code, tc.msg)
			}
		})
	}
}

func TestHTTPClient_RawError(t *testing.T) {
	h := &testHandler{statusCode: http.StatusBadRequest, responseBody: `{"error":"format must be json, csv or pdf"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	err := c.PolicyReport(context.Background(), &PolicyReportRequest{Format: "xls"}, io.Discard)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Fatalf("expected HTTP 400, got %v", err)
	}
}
