package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultPDFTimeout = 30 * time.Second

// ErrPDFDisabled is returned when a PDF export is requested without a renderer
var ErrPDFDisabled = errors.New("PDF export is not enabled")

// A4 landscape in inches, with 10mm margins
const (
	paperWidth  = 11.69
	paperHeight = 8.27
	margin      = 0.39
)

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;font-size:10px;color:#222}
h1{font-size:16px;margin:0 0 4px}
p.sub{margin:0 0 10px;color:#666}
table{border-collapse:collapse;width:100%}
th,td{border:1px solid #ccc;padding:3px 5px;text-align:left}
th{background:#eee}
td.num{text-align:right}
thead{display:table-header-group}
tr{page-break-inside:avoid}
</style></head><body>
<h1>{{.Title}}</h1>
<p class="sub">{{if .Subtitle}}{{.Subtitle}} · {{end}}Generated {{.GeneratedAt.Format "2006-01-02 15:04"}} · {{len .Rows}} rows</p>
<table><thead><tr>{{range .Columns}}<th>{{.Header}}</th>{{end}}</tr></thead>
<tbody>{{$cols := .Columns}}{{range .Rows}}<tr>{{range $i, $v := .}}<td{{if (index $cols $i).Numeric}} class="num"{{end}}>{{$v}}</td>{{end}}</tr>
{{end}}</tbody></table>
</body></html>`))

// PDFRenderer prints report tables to PDF with headless Chrome
type PDFRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewPDFRenderer starts a Chrome allocator, or connects to RemoteURL when set
func NewPDFRenderer(cfg config.PDFConfig, logger *zap.Logger) *PDFRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}
	r := &PDFRenderer{timeout: timeout, logger: logger}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// TableHTML renders the table as a standalone HTML document
func TableHTML(t *Table) (string, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, t); err != nil {
		return "", fmt.Errorf("failed to render table HTML: %w", err)
	}
	return buf.String(), nil
}

// Render prints the table to an A4 landscape PDF
func (r *PDFRenderer) Render(ctx context.Context, t *Table) ([]byte, error) {
	html, err := TableHTML(t)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()
	// tie the browser tab to the request deadline
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(false).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("PDF rendering timed out after %v: %w", r.timeout, err)
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, fmt.Errorf("PDF rendering failed: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("generated PDF is empty")
	}

	r.logger.Info("PDF rendered",
		zap.String("title", t.Title),
		zap.Int("rows", len(t.Rows)),
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

// Close shuts down the Chrome allocator
func (r *PDFRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
