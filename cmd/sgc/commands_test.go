package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/ui"
)

func init() {
	ui.ForceNoColor()
}

// runCLI executes the root command against an httptest server.
func runCLI(t *testing.T, h http.HandlerFunc, args ...string) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--url", srv.URL, "--user", "u1"}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("sgc %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestClientsListCommand(t *testing.T) {
	var gotQuery, gotUser string
	out := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUser = r.Header.Get("X-SGC-User")
		json.NewEncoder(w).Encode(map[string]any{
			"clients": []model.Client{{ID: "c1", Name: "Maria Silva", Status: model.ClientActive, BirthDate: model.NewDate(1990, 5, 20)}},
			"total":   1,
		})
	}, "clients", "list", "--search", "maria")

	if !strings.Contains(gotQuery, "search=maria") {
		t.Errorf("query = %q, want search=maria", gotQuery)
	}
	if gotUser != "u1" {
		t.Errorf("user header = %q, want u1", gotUser)
	}
	for _, want := range []string{"Maria Silva", "20/05/1990", "1 clients (1 total)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPoliciesActivateCommand(t *testing.T) {
	out := runCLI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/policies/p1/activate" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"policy":     model.Policy{ID: "p1", Status: model.PolicyActive},
			"commission": model.Transaction{ID: "t1", Amount: 1234.5, DueDate: model.NewDate(2025, 4, 9)},
		})
	}, "policies", "activate", "p1")

	for _, want := range []string{"Policy p1 is Ativa", "R$ 1.234,50", "09/04/2025"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTransactionsPayRejectsBadAmount(t *testing.T) {
	rootCmd.SetArgs([]string{"--url", "http://127.0.0.1:0", "tx", "pay", "t1", "abc"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "invalid amount") {
		t.Fatalf("expected invalid amount error, got %v", err)
	}
}

func TestClientRequestFromFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("email", "", "")
	fs.String("phone", "", "")
	fs.String("name", "", "")
	fs.String("cpf-cnpj", "", "")
	fs.String("birth-date", "", "")
	fs.String("address", "", "")
	fs.String("status", "", "")
	fs.String("observations", "", "")
	if err := fs.Parse([]string{"--email", "a@b.com", "--phone", ""}); err != nil {
		t.Fatal(err)
	}

	req := clientRequestFromFlags(fs)
	if req.Email == nil || *req.Email != "a@b.com" {
		t.Errorf("Email = %v, want a@b.com", req.Email)
	}
	// An explicitly empty flag clears the field.
	if req.Phone == nil || *req.Phone != "" {
		t.Errorf("Phone = %v, want empty string", req.Phone)
	}
	if req.Name != nil || req.Address != nil {
		t.Errorf("unset flags should stay nil: %+v", req)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Seguradora Ação", 8); got != "Segur..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("curto", 8); got != "curto" {
		t.Errorf("truncate = %q", got)
	}
}
