package report

import (
	"encoding/csv"
	"io"

	"github.com/sgcpro/sgc/internal/locale"
)

var policyHeader = []string{
	"Apólice", "Cliente", "Seguradora", "Ramo", "Produtor", "Início", "Vencimento", "Prêmio", "Comissão", "Status",
}

// WriteCSV writes r as semicolon separated values with pt-BR numbers.
func WriteCSV(w io.Writer, r *Policies) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(policyHeader); err != nil {
		return err
	}
	for _, row := range r.Rows {
		rec := []string{
			row.PolicyNumber,
			row.ClientName,
			row.CompanyName,
			row.Ramo,
			row.ProducerName,
			locale.Date(row.StartDate),
			locale.Date(row.ExpirationDate),
			locale.Decimal(row.Premium),
			locale.Decimal(row.Commission),
			string(row.Status),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
