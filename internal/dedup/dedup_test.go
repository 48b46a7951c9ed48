package dedup

import (
	"testing"

	"github.com/sgcpro/sgc/internal/model"
)

func TestNormalizeName(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"  João   da Silva ", "joao da silva"},
		{"MÁRCIA-Conceição", "marciaconceicao"},
		{"Zé 2º", "ze 2"},
		{"", ""},
	} {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("(11) 99999-0000"); got != "11999990000" {
		t.Errorf("got %q", got)
	}
	if got := Digits("123.456.789-09"); got != "12345678909" {
		t.Errorf("got %q", got)
	}
}

func TestFind_EmailsRaiseConfidence(t *testing.T) {
	r := Find([]*model.Client{
		{ID: "1", Name: "Carlos", Email: "c@x.com"},
		{ID: "2", Name: "Outro", Email: "C@X.COM"},
	})
	if len(r.Groups) != 1 || r.Groups[0].Confidence != High || r.HighConfidence != 2 {
		t.Errorf("got %+v", r)
	}
}

func TestFind(t *testing.T) {
	clients := []*model.Client{
		{ID: "1", Name: "João Silva", CPFCNPJ: "123.456.789-09"},
		{ID: "2", Name: "JOAO SILVA", CPFCNPJ: "12345678909"},
		{ID: "3", Name: "Maria", Phone: "(11) 9999-0000"},
		{ID: "4", Name: "Maria Souza", Phone: "1199990000"},
		{ID: "5", Name: "Carlos", Email: "c@x.com"},
		{ID: "6", Name: "carlos"},
		{ID: "7", Name: "Único"},
		{ID: "9", Name: "", Phone: ""},
		{ID: "10", Name: ""},
	}
	r := Find(clients)

	if len(r.Groups) != 3 {
		t.Fatalf("groups = %d, want 3: %+v", len(r.Groups), r.Groups)
	}
	want := []struct {
		ids  []string
		conf Confidence
	}{
		{[]string{"1", "2"}, High},
		{[]string{"3", "4"}, Medium},
		{[]string{"5", "6"}, Low},
	}
	for i, w := range want {
		g := r.Groups[i]
		if g.Confidence != w.conf || len(g.Clients) != len(w.ids) {
			t.Errorf("group %d: confidence %s, %d clients", i, g.Confidence, len(g.Clients))
			continue
		}
		for j, id := range w.ids {
			if g.Clients[j].ID != id {
				t.Errorf("group %d member %d = %s, want %s", i, j, g.Clients[j].ID, id)
			}
		}
	}
	if r.Count != 6 || r.HighConfidence != 2 || r.MediumConfidence != 2 || r.LowConfidence != 2 {
		t.Errorf("counts = %+v", r)
	}
}
