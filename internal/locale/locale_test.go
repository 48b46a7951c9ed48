package locale

import (
	"testing"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func TestBRL(t *testing.T) {
	for _, tc := range []struct {
		in   float64
		want string
	}{
		{1234.56, "R$ 1.234,56"},
		{0.5, "R$ 0,50"},
		{100, "R$ 100,00"},
		{-42.1, "-R$ 42,10"},
	} {
		if got := BRL(tc.in); got != tc.want {
			t.Errorf("BRL(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDate(t *testing.T) {
	if got := Date(model.NewDate(2024, time.March, 5)); got != "05/03/2024" {
		t.Errorf("got %q", got)
	}
	if got := Date(model.Date{}); got != "" {
		t.Errorf("zero date: got %q", got)
	}
}

func TestLocation(t *testing.T) {
	if Location("") != time.UTC {
		t.Error("empty name should be UTC")
	}
	if Location("Not/AZone") != time.UTC {
		t.Error("unknown zone should fall back to UTC")
	}
}
