package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAppend(t *testing.T) {
	var gotPath, gotQuery string
	var got appendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte(`{"updates":{"updatedRows":1}}`))
	}))
	defer srv.Close()

	c := NewWithHTTPClient(srv.URL, srv.Client())
	err := c.Append(context.Background(), "sheet-123", "Página1", [][]any{{"01/05/2024", "Ana", 10.5}})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-123/values/") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "valueInputOption=RAW" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(got.Values) != 1 || got.Values[0][1] != "Ana" || got.Values[0][2] != 10.5 {
		t.Errorf("values = %v", got.Values)
	}
}

func TestAppend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	err := NewWithHTTPClient(srv.URL, srv.Client()).Append(context.Background(), "s", "Página1", [][]any{{1}})
	if err == nil || !strings.Contains(err.Error(), "does not have permission") {
		t.Errorf("got %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	inline := `{"type":"service_account"}`
	data, err := LoadCredentials("  " + inline)
	if err != nil || string(data) != inline {
		t.Errorf("inline: %q, %v", data, err)
	}

	path := filepath.Join(t.TempDir(), "creds.json")
	if err := os.WriteFile(path, []byte(inline), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err = LoadCredentials(path)
	if err != nil || string(data) != inline {
		t.Errorf("file: %q, %v", data, err)
	}

	if _, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNew_InvalidCredentials(t *testing.T) {
	if _, err := New(context.Background(), []byte(`{}`)); err == nil {
		t.Error("expected error for credentials without a private key")
	}
}
