// Package export writes report tables as CSV, XLSX or PDF.
package export

import (
	"fmt"
	"time"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat maps a query value to a Format, defaulting to CSV
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Extension returns the file extension without the dot
func (f Format) Extension() string {
	return string(f)
}

// Column describes one column of a table. Numeric columns are written as
// numbers in spreadsheets and right-aligned in PDFs.
type Column struct {
	Header  string
	Numeric bool
}

// Table is a rendered report: headers plus string cells
type Table struct {
	Title       string
	Subtitle    string
	Columns     []Column
	Rows        [][]string
	GeneratedAt time.Time
}

// Headers returns the column headers
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// Filename builds <name>_<timestamp>.<ext>
func Filename(name string, at time.Time, f Format) string {
	return fmt.Sprintf("%s_%s.%s", name, at.Format("20060102_150405"), f.Extension())
}
