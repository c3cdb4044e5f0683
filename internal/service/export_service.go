package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/perf-review-api/internal/models"
	appErrors "github.com/noah-isme/perf-review-api/pkg/errors"
	"github.com/noah-isme/perf-review-api/pkg/export"
)

type cycleReportReader interface {
	FindByID(ctx context.Context, id string) (*models.ReviewCycle, error)
	ReportRows(ctx context.Context, cycleID string) ([]models.ReviewReportRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportFormat selects the rendered file type.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ExportResult carries the rendered report bytes and download metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a cycle's review report as CSV or PDF.
type ExportService struct {
	cycles cycleReportReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(cycles cycleReportReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{cycles: cycles, csv: csv, pdf: pdf, logger: logger}
}

// CycleReport renders the review report of one cycle.
func (s *ExportService) CycleReport(ctx context.Context, cycleID string, format ReportFormat) (*ExportResult, error) {
	format = ReportFormat(strings.ToLower(string(format)))
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	cycle, err := s.cycles.FindByID(ctx, cycleID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "review cycle not found")
	}
	rows, err := s.cycles.ReportRows(ctx, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build review report")
	}

	dataset := export.Dataset{
		Headers: []string{"Employee", "Reviewer", "Review Type", "Status", "Final Score"},
	}
	for _, row := range rows {
		status := "Draft"
		if row.Published {
			status = "Published"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Employee":    row.EmployeeName,
			"Reviewer":    row.ReviewerName,
			"Review Type": row.ReviewTypeID.Label(),
			"Status":      status,
			"Final Score": fmt.Sprintf("%.2f", row.AverageRating),
		})
	}

	title := fmt.Sprintf("Review Report %s - %s",
		cycle.StartDate.Format("02 Jan 2006"), cycle.EndDate.Format("02 Jan 2006"))

	var data []byte
	var contentType string
	switch format {
	case ReportFormatCSV:
		data, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ReportFormatPDF:
		data, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render review report")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("review-report-%s.%s", cycleID, format),
		ContentType: contentType,
		Data:        data,
	}, nil
}
