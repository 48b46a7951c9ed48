package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sgcpro/sgc/internal/blob"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store/memory"
)

const testUser = "user-1"

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// testEnv is a Server over the in-memory store with auth disabled.
type testEnv struct {
	t       *testing.T
	store   *memory.Store
	blobs   *blob.Memory
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, Options{Blobs: blob.NewMemory()}, AuthConfig{})
}

func newTestEnvWith(t *testing.T, opts Options, auth AuthConfig) *testEnv {
	t.Helper()
	ms := memory.New()
	ms.SetClock(func() time.Time { return testNow })
	opts.Now = func() time.Time { return testNow }
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := New(ms, nil, opts)
	env := &testEnv{t: t, store: ms, handler: srv.NewHTTPHandler(auth)}
	if b, ok := opts.Blobs.(*blob.Memory); ok {
		env.blobs = b
	}
	return env
}

// do sends a request as testUser. A non-nil body is JSON-encoded unless
// it is already a []byte.
func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.doAs(testUser, method, path, body)
}

func (e *testEnv) doAs(user, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rd = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// requireStatus fails the test when rec has a different status code.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

// decode unmarshals the response body into a T.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return v
}

// createClient creates a client named name and returns its id.
func (e *testEnv) createClient(name string) string {
	e.t.Helper()
	rec := e.do("POST", "/v1/clients", map[string]any{"name": name, "email": "cliente@example.com"})
	requireStatus(e.t, rec, http.StatusCreated)
	return decode[map[string]any](e.t, rec)["id"].(string)
}

// createPolicy creates a policy for clientID with the given fields merged
// over a default Orçamento.
func (e *testEnv) createPolicy(clientID string, fields map[string]any) map[string]any {
	e.t.Helper()
	body := map[string]any{
		"client_id":       clientID,
		"policy_number":   "APL-001",
		"type":            "Auto",
		"premium_value":   1000.0,
		"commission_rate": 10.0,
	}
	for k, v := range fields {
		body[k] = v
	}
	rec := e.do("POST", "/v1/policies", body)
	requireStatus(e.t, rec, http.StatusCreated)
	return decode[map[string]any](e.t, rec)
}

func TestNewDefaults(t *testing.T) {
	srv := New(memory.New(), nil, Options{})
	if srv.publisher == nil {
		t.Fatal("expected a default publisher")
	}
	if srv.chart == nil || !srv.chart.Has(model.EntryIncome, "Comissão") {
		t.Fatal("expected the default chart of accounts")
	}
	if srv.loc != time.UTC {
		t.Fatalf("expected UTC, got %v", srv.loc)
	}
	if srv.now == nil || srv.logger == nil {
		t.Fatal("expected clock and logger defaults")
	}
}

func TestToday(t *testing.T) {
	sp, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 01:00 UTC is still the previous day in São Paulo.
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	srv := New(memory.New(), nil, Options{Location: sp, Now: func() time.Time { return now }})
	if got := srv.today().String(); got != "2025-03-09" {
		t.Fatalf("expected 2025-03-09, got %s", got)
	}
}
