package quote

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store/memory"
)

func TestFindBestMatch(t *testing.T) {
	items := []Item{
		{ID: "1", Name: "Porto Seguro"},
		{ID: "2", Name: "Tokio Marine Seguradora"},
		{ID: "3", Name: "Allianz"},
		{ID: "4", Name: "Maria Aparecida Souza"},
	}
	for _, tc := range []struct {
		term    string
		wantID  string
		quality Quality
	}{
		{"  porto seguro ", "1", MatchExact},
		{"Allianz Seguros S.A.", "3", MatchPartial},  // item inside term
		{"Tokio", "2", MatchPartial},                 // term inside item
		{"Maria Souza Aparecida", "4", MatchPartial}, // keyword overlap
		{"Sul America", "", MatchNone},
		{"de a", "", MatchNone}, // no word longer than two characters
		{"", "", MatchNone},
	} {
		got, q := FindBestMatch(tc.term, items)
		if q != tc.quality || got.ID != tc.wantID {
			t.Errorf("FindBestMatch(%q) = %q/%s, want %q/%s", tc.term, got.ID, q, tc.wantID, tc.quality)
		}
	}
}

func TestFindBestMatch_SingleKeyword(t *testing.T) {
	items := []Item{{ID: "r1", Name: "Seguro Automóvel"}}
	if got, q := FindBestMatch("automóvel xx", items); q != MatchPartial || got.ID != "r1" {
		t.Errorf("got %q/%s", got.ID, q)
	}
}

func TestParseReply(t *testing.T) {
	reply := "Aqui está:\n```json\n{\"clientName\": \"Ana\", \"premiumValue\": 5848.43, \"commissionPercentage\": null, \"shouldGenerateRenewal\": true}\n```"
	ext, err := ParseReply(reply)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if ext.ClientName != "Ana" || ext.PremiumValue == nil || *ext.PremiumValue != 5848.43 || ext.CommissionPercentage != nil || !ext.ShouldGenerateRenewal {
		t.Errorf("got %+v", ext)
	}

	if _, err := ParseReply("sem dados"); !errors.Is(err, ErrNoJSON) {
		t.Errorf("got %v, want ErrNoJSON", err)
	}
}

func TestMatch(t *testing.T) {
	ref := &Reference{
		Clients:   []Item{{ID: "cli-1", Name: "Ana Maria"}},
		Companies: []Item{{ID: "seg-1", Name: "Porto Seguro"}},
		Ramos:     []Item{{ID: "ram-1", Name: "Auto"}},
	}
	res := Match(&Extracted{ClientName: "ANA MARIA", InsurerName: "Porto"}, ref)
	if res.ClientID != "cli-1" || res.ClientName != "Ana Maria" || res.MatchingDetails.ClientMatch != MatchExact {
		t.Errorf("client: %+v", res)
	}
	if res.InsurerID != "seg-1" || res.InsurerName != "Porto Seguro" || res.MatchingDetails.InsurerMatch != MatchPartial {
		t.Errorf("insurer: %+v", res)
	}
	if res.InsuranceLineID != "" || res.MatchingDetails.RamoMatch != MatchNone {
		t.Errorf("ramo not extracted should be none: %+v", res.MatchingDetails)
	}
}

func TestBuildPrompt_LimitsClients(t *testing.T) {
	ref := &Reference{Ramos: []Item{{Name: "Auto"}}, Companies: []Item{{Name: "Allianz"}}}
	for i := range 150 {
		ref.Clients = append(ref.Clients, Item{Name: "Cliente" + string(rune('A'+i%26)) + strings.Repeat("x", i)})
	}
	p := BuildPrompt(ref)
	if !strings.Contains(p, "**Ramos Cadastrados:** Auto") || !strings.Contains(p, "Allianz") {
		t.Error("prompt is missing reference names")
	}
	if strings.Contains(p, strings.Repeat("x", 120)) {
		t.Error("prompt lists more than 100 clients")
	}
}

type stubExtractor struct {
	reply  string
	prompt string
	pdf    []byte
}

func (s *stubExtractor) Extract(_ context.Context, pdf []byte, prompt string) (string, error) {
	s.pdf, s.prompt = pdf, prompt
	return s.reply, nil
}

func TestService_Extract(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.CreateClient(ctx, &model.Client{ID: "cli-1", UserID: "u1", Name: "João da Silva"})
	_ = s.CreateClient(ctx, &model.Client{ID: "cli-2", UserID: "u2", Name: "Outro Usuário"})
	_ = s.CreateCompany(ctx, &model.Company{ID: "seg-1", UserID: "u1", Name: "Bradesco Seguros"})
	_ = s.CreateRamo(ctx, &model.Ramo{ID: "ram-1", UserID: "u1", Name: "Residencial"})

	stub := &stubExtractor{reply: `{"clientName":"JOÃO DA SILVA","insurerName":"Bradesco","insuranceLine":"Residencial","policyNumber":"123"}`}
	svc := &Service{Store: s, Extractor: stub}
	res, err := svc.Extract(ctx, "u1", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(stub.pdf) != "%PDF-1.4" {
		t.Error("pdf not forwarded")
	}
	if strings.Contains(stub.prompt, "Outro Usuário") {
		t.Error("prompt leaks another user's clients")
	}
	if res.InsurerID != "seg-1" || res.InsuranceLineID != "ram-1" || res.MatchingDetails.RamoMatch != MatchExact {
		t.Errorf("got %+v", res)
	}
}
