package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/gestao-escolar-api/internal/dto"
	"github.com/noah-isme/gestao-escolar-api/internal/models"
	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
	"github.com/noah-isme/gestao-escolar-api/pkg/export"
)

// ExportFormat selects the rendering of an export.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ContentType returns the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatJSON:
		return "application/json; charset=utf-8"
	case ExportFormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseExportFormat validates the requested format, defaulting to CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatJSON:
		return ExportFormatJSON, nil
	case ExportFormatPDF:
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("format: formato não suportado %q (use csv, json ou pdf)", raw))
	}
}

// ExportDataset names the exported collection.
type ExportDataset string

// Export datasets.
const (
	ExportDatasetStudents    ExportDataset = "alunos"
	ExportDatasetEnrollments ExportDataset = "matriculas"
)

// Filename returns the attachment name for the dataset and format.
func (d ExportDataset) Filename(format ExportFormat) string {
	return fmt.Sprintf("%s.%s", d, format)
}

type exportRepository interface {
	Iterate(ctx context.Context, filter models.StudentFilter, fn func(models.StudentDetail) error) error
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	FlushEvery int
}

// ExportService renders student listings into downloadable documents.
type ExportService struct {
	repo    exportRepository
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(repo exportRepository, pdf pdfRenderer, metrics *MetricsService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if cfg.FlushEvery <= 0 {
		cfg.FlushEvery = 100
	}
	return &ExportService{repo: repo, pdf: pdf, metrics: metrics, logger: logger, cfg: cfg}
}

// StreamCSV writes the dataset to w row by row straight from the database
// cursor. It returns the number of data rows written. Nothing is written to w
// until the query yields its first row or completes, so a query that fails up
// front leaves w untouched.
func (s *ExportService) StreamCSV(ctx context.Context, w io.Writer, dataset ExportDataset, filter models.StudentFilter) (int, error) {
	stream, err := export.NewCSVStream(w, dto.ExportHeaders, s.cfg.FlushEvery)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start export")
	}
	err = s.repo.Iterate(ctx, scopeFilter(dataset, filter), func(d models.StudentDetail) error {
		return stream.Write(dto.NewExportRecord(d).Values())
	})
	if err == nil {
		err = stream.Close()
	}
	s.metrics.AddExportRows(string(dataset), string(ExportFormatCSV), stream.Rows())
	if err != nil {
		s.logger.Error("csv export aborted", zap.String("dataset", string(dataset)), zap.Int("rows", stream.Rows()), zap.Error(err))
		return stream.Rows(), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export")
	}
	return stream.Rows(), nil
}

// Records collects the whole dataset as flat records for JSON output.
func (s *ExportService) Records(ctx context.Context, dataset ExportDataset, filter models.StudentFilter) ([]dto.ExportRecord, error) {
	records := make([]dto.ExportRecord, 0)
	err := s.repo.Iterate(ctx, scopeFilter(dataset, filter), func(d models.StudentDetail) error {
		records = append(records, dto.NewExportRecord(d))
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export")
	}
	s.metrics.AddExportRows(string(dataset), string(ExportFormatJSON), len(records))
	return records, nil
}

// PDF renders the dataset as a table.
func (s *ExportService) PDF(ctx context.Context, dataset ExportDataset, filter models.StudentFilter) ([]byte, error) {
	data := export.Dataset{Headers: dto.ExportHeaders}
	err := s.repo.Iterate(ctx, scopeFilter(dataset, filter), func(d models.StudentDetail) error {
		data.Rows = append(data.Rows, dto.NewExportRecord(d).Row())
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export")
	}
	out, err := s.pdf.Render(data, string(dataset))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	s.metrics.AddExportRows(string(dataset), string(ExportFormatPDF), len(data.Rows))
	return out, nil
}

func scopeFilter(dataset ExportDataset, filter models.StudentFilter) models.StudentFilter {
	filter.Page, filter.PageSize = 0, 0
	if dataset == ExportDatasetEnrollments {
		filter.OnlyEnrolled = true
	}
	return filter
}
