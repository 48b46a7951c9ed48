package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store/memory"
)

func TestExportJSONL_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), memory.New(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.Counts["client"] != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
}

func TestExportJSONL_AllUsers(t *testing.T) {
	ctx := context.Background()
	ms := memory.New()

	// Out of ID order, and owned by different users.
	_ = ms.CreateClient(ctx, &model.Client{ID: "cli-z", UserID: "u2", Name: "Zeca", Status: model.ClientActive})
	_ = ms.CreateClient(ctx, &model.Client{ID: "cli-a", UserID: "u1", Name: "Ana", Status: model.ClientActive})
	_ = ms.CreateCompany(ctx, &model.Company{ID: "seg-1", UserID: "u1", Name: "Porto"})
	_ = ms.CreateTransaction(ctx, &model.Transaction{
		ID: "trx-1", UserID: "u1", Description: "Comissão", Amount: 100, PaidAmount: 40,
		Status: model.TxPartialPaid, Nature: model.NatureIncome,
	})
	_ = ms.CreatePayment(ctx, &model.Payment{ID: "pag-1", TransactionID: "trx-1", UserID: "u1", Amount: 40, Description: "parcela"})

	var buf bytes.Buffer
	if err := ExportJSONL(ctx, ms, &buf); err != nil {
		t.Fatalf("ExportJSONL: %v", err)
	}
	lines := nonEmptyLines(buf.String())
	// header + 2 clients + company + transaction + payment
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	_ = json.Unmarshal([]byte(lines[0]), &h)
	if h.Counts["client"] != 2 || h.Counts["payment"] != 1 {
		t.Errorf("counts = %v", h.Counts)
	}

	var first struct {
		Type string       `json:"type"`
		Data model.Client `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "client" || first.Data.ID != "cli-a" {
		t.Errorf("first record = %s %s", first.Type, first.Data.ID)
	}
	if !strings.Contains(lines[5], `"type":"payment"`) {
		t.Errorf("last record = %s", lines[5])
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
