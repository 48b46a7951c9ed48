package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sgcpro/sgc/internal/commission"
	"github.com/sgcpro/sgc/internal/dedup"
	"github.com/sgcpro/sgc/internal/metrics"
	"github.com/sgcpro/sgc/internal/model"
)

// UserHeader names the acting user on service-token requests.
const UserHeader = "X-SGC-User"

// HTTPClient implements SGCClient using the SGC HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	user       string
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithToken sets the Bearer token sent on every request. It is either the
// service token or a user JWT.
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = token }
}

// WithUser sets the acting user for service-token requests.
func WithUser(user string) Option {
	return func(c *HTTPClient) { c.user = user }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080").
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Clients ---

func (c *HTTPClient) CreateClient(ctx context.Context, req *ClientRequest) (*model.Client, error) {
	var out model.Client
	if err := c.doJSON(ctx, http.MethodPost, "/v1/clients", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var out model.Client
	if err := c.doJSON(ctx, http.MethodGet, "/v1/clients/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListClients(ctx context.Context, req *ListClientsRequest) (*ListClientsResponse, error) {
	q := url.Values{}
	setQuery(q, "search", req.Search)
	setQuery(q, "status", req.Status)
	setQuery(q, "seguradora", req.Seguradora)
	setQuery(q, "ramo", req.Ramo)
	setPage(q, req.Limit, req.Offset)

	var resp ListClientsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/clients", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateClient(ctx context.Context, id string, req *ClientRequest) (*model.Client, error) {
	var out model.Client
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/clients/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteClient(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/clients/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ClientBirthdays(ctx context.Context, scope string) ([]*model.Client, error) {
	q := url.Values{}
	setQuery(q, "scope", scope)
	var resp struct {
		Clients []*model.Client `json:"clients"`
	}
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/clients/birthdays", q), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Clients, nil
}

func (c *HTTPClient) ClientDuplicates(ctx context.Context) (*dedup.Report, error) {
	var out dedup.Report
	if err := c.doJSON(ctx, http.MethodGet, "/v1/clients/duplicates", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Policies ---

func (c *HTTPClient) CreatePolicy(ctx context.Context, req *PolicyRequest) (*model.Policy, error) {
	var out model.Policy
	if err := c.doJSON(ctx, http.MethodPost, "/v1/policies", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetPolicy(ctx context.Context, id string) (*model.Policy, error) {
	var out model.Policy
	if err := c.doJSON(ctx, http.MethodGet, "/v1/policies/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListPolicies(ctx context.Context, req *ListPoliciesRequest) (*ListPoliciesResponse, error) {
	q := url.Values{}
	setQuery(q, "client_id", req.ClientID)
	setQuery(q, "status", strings.Join(req.Status, ","))
	setQuery(q, "seguradora", strings.Join(req.Seguradora, ","))
	setQuery(q, "ramo", strings.Join(req.Ramo, ","))
	setQuery(q, "search", req.Search)
	setPage(q, req.Limit, req.Offset)

	var resp ListPoliciesResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/policies", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ExpiringPolicies(ctx context.Context, days int) (*ListPoliciesResponse, error) {
	q := url.Values{}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	var resp ListPoliciesResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/policies/expiring", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ActivatePolicy(ctx context.Context, id string) (*ActivateResponse, error) {
	var out ActivateResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/policies/"+url.PathEscape(id)+"/activate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CancelPolicy(ctx context.Context, id string) (*model.Policy, error) {
	var out model.Policy
	if err := c.doJSON(ctx, http.MethodPost, "/v1/policies/"+url.PathEscape(id)+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) RenewPolicy(ctx context.Context, id string) (*RenewResponse, error) {
	var out RenewResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/policies/"+url.PathEscape(id)+"/renew", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Finance ---

func (c *HTTPClient) ListTransactions(ctx context.Context, req *ListTransactionsRequest) (*ListTransactionsResponse, error) {
	q := url.Values{}
	setQuery(q, "policy_id", req.PolicyID)
	setQuery(q, "client_id", req.ClientID)
	setQuery(q, "status", strings.Join(req.Status, ","))
	setQuery(q, "nature", req.Nature)
	setQuery(q, "date_from", req.DateFrom)
	setQuery(q, "date_to", req.DateTo)
	setPage(q, req.Limit, req.Offset)

	var resp ListTransactionsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/transactions", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreatePayment(ctx context.Context, transactionID string, req *PaymentRequest) (*PaymentResponse, error) {
	var out PaymentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/transactions/"+url.PathEscape(transactionID)+"/payments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Agenda ---

func (c *HTTPClient) CreateAppointment(ctx context.Context, req *AppointmentRequest) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/appointments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	q := url.Values{}
	setQuery(q, "status", strings.Join(req.Status, ","))
	setQuery(q, "date_from", req.DateFrom)
	setQuery(q, "date_to", req.DateTo)
	setPage(q, req.Limit, req.Offset)

	var resp ListAppointmentsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/appointments", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CompleteAppointment(ctx context.Context, id, rule string) (*CompleteResponse, error) {
	var body any
	if rule != "" {
		body = map[string]string{"recurrence_rule": rule}
	}
	var out CompleteResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/appointments/"+url.PathEscape(id)+"/complete", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Occurrences(ctx context.Context, id string, n int) ([]time.Time, error) {
	q := url.Values{}
	if n > 0 {
		q.Set("n", strconv.Itoa(n))
	}
	var resp struct {
		Occurrences []time.Time `json:"occurrences"`
	}
	path := withQuery("/v1/appointments/"+url.PathEscape(id)+"/occurrences", q)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Occurrences, nil
}

func (c *HTTPClient) Calendar(ctx context.Context, w io.Writer) error {
	return c.doRaw(ctx, "/v1/appointments/calendar.ics", w)
}

// --- Claims ---

func (c *HTTPClient) ListClaims(ctx context.Context, status []string) (*ListClaimsResponse, error) {
	q := url.Values{}
	setQuery(q, "status", strings.Join(status, ","))
	var resp ListClaimsResponse
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/claims", q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SetClaimStatus(ctx context.Context, id, status string) (*model.Claim, error) {
	var out model.Claim
	body := map[string]string{"status": status}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/claims/"+url.PathEscape(id)+"/status", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Reports ---

func (c *HTTPClient) PolicyReport(ctx context.Context, req *PolicyReportRequest, w io.Writer) error {
	q := url.Values{}
	setQuery(q, "from", req.From)
	setQuery(q, "to", req.To)
	setQuery(q, "seguradoras", strings.Join(req.Seguradoras, ","))
	setQuery(q, "ramos", strings.Join(req.Ramos, ","))
	setQuery(q, "produtores", strings.Join(req.Produtores, ","))
	setQuery(q, "status", strings.Join(req.Status, ","))
	setQuery(q, "format", req.Format)
	return c.doRaw(ctx, withQuery("/v1/reports/policies", q), w)
}

// --- Events ---

func (c *HTTPClient) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/events/"+url.PathEscape(entityID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Jobs ---

func (c *HTTPClient) Consolidate(ctx context.Context, date string) (*metrics.ConsolidationResult, error) {
	q := url.Values{}
	setQuery(q, "date", date)
	var out metrics.ConsolidationResult
	if err := c.doJSON(ctx, http.MethodPost, withQuery("/v1/jobs/consolidate", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SyncSheets(ctx context.Context, date string) (*metrics.SyncResult, error) {
	q := url.Values{}
	setQuery(q, "date", date)
	var out metrics.SyncResult
	if err := c.doJSON(ctx, http.MethodPost, withQuery("/v1/jobs/sheets-sync", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) BackfillCommissions(ctx context.Context) (*commission.BackfillReport, error) {
	var out commission.BackfillReport
	if err := c.doJSON(ctx, http.MethodPost, "/v1/jobs/backfill", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Backup(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/jobs/backup", nil, nil)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setPage(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// newRequest builds a request carrying the auth and user headers.
func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.user != "" {
		req.Header.Set(UserHeader, c.user)
	}
	return req, nil
}

// apiError builds an APIError from a failed response body.
func apiError(status int, body []byte) error {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content: nothing to decode.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// doRaw performs a GET and copies the response body to w unchanged.
func (c *HTTPClient) doRaw(ctx context.Context, path string, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	return nil
}
