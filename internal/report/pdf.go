package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/sgcpro/sgc/internal/locale"
)

type pdfColumn struct {
	title string
	width float64
	align string
	value func(Row) string
}

var pdfColumns = []pdfColumn{
	{"Apólice", 40, "L", func(r Row) string { return r.PolicyNumber }},
	{"Cliente", 62, "L", func(r Row) string { return r.ClientName }},
	{"Seguradora", 45, "L", func(r Row) string { return r.CompanyName }},
	{"Ramo", 35, "L", func(r Row) string { return r.Ramo }},
	{"Prêmio", 32, "R", func(r Row) string { return locale.BRL(r.Premium) }},
	{"Comissão", 32, "R", func(r Row) string { return locale.BRL(r.Commission) }},
	{"Status", 31, "C", func(r Row) string { return string(r.Status) }},
}

// WritePDF renders r as a landscape A4 table followed by a totals line.
func WritePDF(w io.Writer, r *Policies, generated time.Time) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Relatório de Apólices", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("Relatório de Apólices"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Gerado em %s · %d apólices", generated.Format("02/01/2006 15:04"), r.Count)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			header()
		}
	})
	header()

	for _, row := range r.Rows {
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(truncate(pdf, c.value(row), c.width-2)), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 9)
	var labelWidth float64
	for _, c := range pdfColumns[:4] {
		labelWidth += c.width
	}
	pdf.CellFormat(labelWidth, 7, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfColumns[4].width, 7, tr(locale.BRL(r.TotalPremium)), "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfColumns[5].width, 7, tr(locale.BRL(r.TotalCommission)), "1", 0, "R", true, 0, "")
	pdf.CellFormat(pdfColumns[6].width, 7, "", "1", 1, "C", true, 0, "")

	return pdf.Output(w)
}

// truncate shortens s with an ellipsis until it fits width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
