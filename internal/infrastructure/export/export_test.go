package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleTable() *Table {
	return &Table{
		Title:       "Inventory Transfers",
		Columns:     []Column{{Header: "Product"}, {Header: "Quantity", Numeric: true}, {Header: "Notes"}},
		Rows:        [][]string{{"T-Shirt", "12.5", "first, with comma"}, {"Jeans", "3", `quote "here"`}},
		GeneratedAt: time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatCSV, "csv": FormatCSV, "xlsx": FormatXLSX, "pdf": FormatPDF} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 30, 15, 0, time.UTC)
	assert.Equal(t, "transfers_20240501_083015.xlsx", Filename("transfers", at, FormatXLSX))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Product,Quantity,Notes", lines[0])
	assert.Equal(t, `T-Shirt,12.5,"first, with comma"`, lines[1])
	assert.Equal(t, `Jeans,3,"quote ""here"""`, lines[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Inventory Transfers"}, f.GetSheetList())
	rows, err := f.GetRows("Inventory Transfers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Product", "Quantity", "Notes"}, rows[0])
	assert.Equal(t, "12.5", rows[1][1])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Report", sheetName(""))
	assert.Equal(t, "Report", sheetName("[]"))
	assert.Equal(t, "Sales 2024-01", sheetName("Sales 2024-01"))
	assert.Len(t, []rune(sheetName(strings.Repeat("x", 40))), maxSheetName)
	assert.Equal(t, "ab", sheetName("a/b"))
}

func TestTableHTML(t *testing.T) {
	tbl := sampleTable()
	tbl.Rows = append(tbl.Rows, []string{"<script>", "1", ""})

	html, err := TableHTML(tbl)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Inventory Transfers</h1>")
	assert.Contains(t, html, `<td class="num">12.5</td>`)
	assert.Contains(t, html, "3 rows")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}
