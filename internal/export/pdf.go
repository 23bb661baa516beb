package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"trackpal/internal/model"
)

// Column widths in millimetres, in Columns order.
var pdfWidths = []float64{28, 40, 30, 30, 62}

// WritePDF renders a one-table transactions report.
func WritePDF(w io.Writer, txs []model.Transaction, now time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("TrackPal - Transactions Report", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TrackPal - Transactions Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 6, "Generated: "+now.Format("2006-01-02"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFillColor(59, 130, 246)
	for i, col := range Columns {
		pdf.CellFormat(pdfWidths[i], 8, col, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, tx := range txs {
		cells := row(tx)
		cells[3] = "$" + tx.Amount.StringFixed(2)
		for i, cell := range cells {
			align := "L"
			if i == 3 {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], 7, tr(truncate(cell, pdfWidths[i])), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// truncate keeps a cell on one line; roughly 2mm per character at 9pt.
func truncate(s string, width float64) string {
	limit := int(width / 2)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
