// Package report builds the downloadable exports of the list pages.
package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/finance"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/report"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/iwaqasmaqbool/gms-sub002/internal/infrastructure/export"
	"go.uber.org/zap"
)

// ObjectStorage receives archived copies of exports
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Renderer turns a table into a PDF document
type Renderer interface {
	Render(ctx context.Context, t *export.Table) ([]byte, error)
}

// Summarizer computes the financial summary
type Summarizer interface {
	Summary(ctx context.Context, actor identity.Actor, filter shared.Filter) (finance.FinancialSummary, error)
}

// Result is a generated export file
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	// ArchiveKey is the object key of the archived copy, empty when not archived
	ArchiveKey string
}

// ExportService renders report tables in the requested format
type ExportService struct {
	repos   transaction.Repositories
	summary Summarizer
	pdf     Renderer
	archive ObjectStorage
	logger  *zap.Logger
	now     func() time.Time
}

// ExportOption configures optional collaborators of the ExportService
type ExportOption func(*ExportService)

// WithPDFRenderer enables the pdf format
func WithPDFRenderer(r Renderer) ExportOption {
	return func(s *ExportService) { s.pdf = r }
}

// WithArchive uploads every export to object storage
func WithArchive(storage ObjectStorage) ExportOption {
	return func(s *ExportService) { s.archive = storage }
}

// NewExportService creates a new ExportService
func NewExportService(repos transaction.Repositories, summary Summarizer, logger *zap.Logger, opts ...ExportOption) *ExportService {
	s := &ExportService{repos: repos, summary: summary, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PDFEnabled reports whether the pdf format can be requested
func (s *ExportService) PDFEnabled() bool {
	return s.pdf != nil
}

// Export builds the named report over every row matching filter, ignoring
// its pagination, and encodes it in the requested format.
func (s *ExportService) Export(ctx context.Context, actor identity.Actor, kindName, formatName string, filter shared.Filter) (*Result, error) {
	kind, err := report.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	if err := actor.Require(kind.Roles()...); err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	if format == export.FormatPDF && s.pdf == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, export.ErrPDFDisabled.Error())
	}

	at := s.now()
	table, err := s.table(ctx, actor, kind, filter.Unpaged())
	if err != nil {
		return nil, err
	}
	table.GeneratedAt = at

	data, err := s.encode(ctx, table, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s export: %w", format, err)
	}

	res := &Result{
		Filename:    export.Filename(string(kind), at, format),
		ContentType: format.ContentType(),
		Data:        data,
		Rows:        len(table.Rows),
	}

	if s.archive != nil {
		key := fmt.Sprintf("reports/%s/%s.%s", kind, at.UTC().Format("20060102_150405"), format.Extension())
		if err := s.archive.Upload(ctx, key, data, res.ContentType); err != nil {
			s.logger.Warn("Failed to archive export", zap.String("key", key), zap.Error(err))
		} else {
			res.ArchiveKey = key
		}
	}

	if err := appactivity.Record(ctx, s.repos.ActivityLogs(), actor, activity.ActionExport, activity.ModuleReports, nil,
		"Exported %s as %s (%d rows)", kind.Title(), format, res.Rows); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ExportService) encode(ctx context.Context, t *export.Table, format export.Format) ([]byte, error) {
	switch format {
	case export.FormatPDF:
		return s.pdf.Render(ctx, t)
	case export.FormatXLSX:
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, t); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, t); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
