package views

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// FuncMap returns the helpers available to every page template
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":      money,
		"qty":        qty,
		"title":      title,
		"date":       formatDate,
		"datetime":   formatDateTime,
		"inputDate":  formatDate,
		"pageURL":    pageURL,
		"exportURL":  exportURL,
		"badge":      badge,
		"add":        func(a, b int) int { return a + b },
		"str":        func(v any) string { return fmt.Sprint(v) },
		"shortID":    shortID,
		"isPositive": func(d decimal.Decimal) bool { return d.IsPositive() },
		"isNegative": func(d decimal.Decimal) bool { return d.IsNegative() },
		"percentOf":  percentOf,
		"pager":      pager,
		"exports":    exports,
	}
}

// money renders an amount with thousands separators and two decimals
func money(d decimal.Decimal) string {
	return group(d.Round(2), 2)
}

// qty renders a quantity with separators, dropping trailing zero decimals
func qty(d decimal.Decimal) string {
	return group(d, -1)
}

// group formats d's integer part with the English digit grouping. places < 0
// keeps the decimal part as short as possible.
func group(d decimal.Decimal, places int32) string {
	neg := d.IsNegative()
	abs := d.Abs()
	whole := abs.IntPart()
	frac := abs.Sub(decimal.NewFromInt(whole))

	var tail string
	if places >= 0 {
		tail = frac.StringFixed(places)[1:]
	} else if !frac.IsZero() {
		tail = frac.String()[1:]
	}

	s := printer.Sprintf("%d", whole) + tail
	if neg && !d.IsZero() {
		return "-" + s
	}
	return s
}

// title turns enum values like "bank_transfer" into "Bank Transfer"
func title(v any) string {
	return titler.String(strings.ReplaceAll(fmt.Sprint(v), "_", " "))
}

func formatDate(v any) string {
	return formatTime(v, dateLayout)
}

func formatDateTime(v any) string {
	return formatTime(v, dateTimeLayout)
}

func formatTime(v any, layout string) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return ""
		}
		return t.Format(layout)
	}
	return ""
}

// pageURL keeps the current filters and switches to page n
func pageURL(query url.Values, n int) string {
	q := clone(query)
	q.Set("page", strconv.Itoa(n))
	return "?" + q.Encode()
}

// exportURL links the current filters to the report export endpoint
func exportURL(kind, format string, query url.Values) string {
	q := clone(query)
	q.Del("page")
	q.Del("page_size")
	q.Set("report", kind)
	q.Set("format", format)
	return "/reports/export?" + q.Encode()
}

func clone(query url.Values) url.Values {
	q := make(url.Values, len(query))
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	return q
}

// Pager is the view model of the pagination partial
type Pager struct {
	Page       int
	TotalPages int
	Total      int64
	PrevURL    string
	NextURL    string
}

func pager(query url.Values, page, totalPages int, total int64) Pager {
	p := Pager{Page: page, TotalPages: totalPages, Total: total}
	if page > 1 {
		p.PrevURL = pageURL(query, page-1)
	}
	if page < totalPages {
		p.NextURL = pageURL(query, page+1)
	}
	return p
}

// Link is a labelled href
type Link struct {
	Label string
	URL   string
}

// exports lists the download links of a report for the current filters
func exports(kind string, p Page) []Link {
	links := []Link{
		{Label: "CSV", URL: exportURL(kind, "csv", p.Query)},
		{Label: "Excel", URL: exportURL(kind, "xlsx", p.Query)},
	}
	if p.PDF {
		links = append(links, Link{Label: "PDF", URL: exportURL(kind, "pdf", p.Query)})
	}
	return links
}

// badge picks the css modifier for a status value
func badge(v any) string {
	switch fmt.Sprint(v) {
	case "completed", "paid", "active", "true":
		return "badge-ok"
	case "partial", "transit", "stitching", "ironing", "packaging", "cutting":
		return "badge-warn"
	case "unpaid", "inactive", "false":
		return "badge-bad"
	}
	return "badge-info"
}

func shortID(v any) string {
	s := fmt.Sprint(v)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// percentOf returns part/total as a whole percentage for progress bars
func percentOf(part, total int) int {
	if total <= 0 {
		return 0
	}
	return part * 100 / total
}
