// Package export renders transactions as CSV or PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"trackpal/internal/aggregate"
	"trackpal/internal/model"
)

// Format selects an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// Columns is the column order shared by every format.
var Columns = []string{"Date", "Source", "Category", "Amount", "Notes"}

// ParseFormat accepts "csv" or "pdf", case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatCSV, FormatPDF:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q", raw)
	}
}

// ContentType is the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// FileName is the download name for an export generated at now.
func (f Format) FileName(now time.Time) string {
	if f == FormatPDF {
		return fmt.Sprintf("transactions_%s.pdf", now.Format("2006-01-02"))
	}
	return "transactions.csv"
}

// Write encodes txs in format f.
func Write(w io.Writer, f Format, txs []model.Transaction, now time.Time) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, txs)
	case FormatPDF:
		return WritePDF(w, txs, now)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// WriteCSV writes a header row followed by one row per transaction.
func WriteCSV(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, tx := range txs {
		if err := cw.Write(row(tx)); err != nil {
			return fmt.Errorf("write csv row %d: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(tx model.Transaction) []string {
	return []string{
		aggregate.FormatDate(tx.Date),
		tx.Source,
		string(tx.Category),
		tx.Amount.String(),
		tx.Notes,
	}
}
