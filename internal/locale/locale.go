// Package locale formats money and dates the way Brazilian users read them.
package locale

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sgcpro/sgc/internal/model"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats v as Brazilian reais, e.g. "R$ 1.234,56".
func BRL(v float64) string {
	s := printer.Sprint(number.Decimal(v, number.Scale(2)))
	if strings.HasPrefix(s, "-") {
		return "-R$ " + s[1:]
	}
	return "R$ " + s
}

// Decimal formats v with two decimals and pt-BR separators, without a symbol.
func Decimal(v float64) string {
	return printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Date formats d as dd/mm/yyyy, or "" for the zero date.
func Date(d model.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02/01/2006")
}

// Location loads the named zone, falling back to UTC.
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
