package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skyward-dev/flightline-api/internal/models"
	appErrors "github.com/skyward-dev/flightline-api/pkg/errors"
	"github.com/skyward-dev/flightline-api/pkg/export"
	"github.com/skyward-dev/flightline-api/pkg/storage"
)

// ExportFormat selects the rendered sheet type.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

type exportBookingRepository interface {
	ListWeek(ctx context.Context, courseID string, year, week int) ([]models.BookingDetail, error)
}

// ExportResult carries the rendered sheet plus its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders weekly booking sheets for print and download.
type ExportService struct {
	bookings exportBookingRepository
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	archive  *storage.Archive
	enabled  bool
	logger   *zap.Logger
}

// NewExportService wires the export dependencies. A nil archive disables the
// on-disk retention copy.
func NewExportService(bookings exportBookingRepository, archive *storage.Archive, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		bookings: bookings,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		archive:  archive,
		enabled:  enabled,
		logger:   logger,
	}
}

// WeekSheet renders the week's active bookings in the requested format.
func (s *ExportService) WeekSheet(ctx context.Context, courseID string, year, week int, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	bookings, err := s.bookings.ListWeek(ctx, courseID, year, week)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week bookings")
	}

	dataset := weekDataset(bookings)
	title := fmt.Sprintf("Flight schedule week %d/%d", week, year)
	base := fmt.Sprintf("schedule-%d-W%02d", year, week)

	var result *ExportResult
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		result = &ExportResult{Content: content, ContentType: "text/csv", Filename: base + ".csv"}
	default:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		result = &ExportResult{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}
	}

	s.archiveCopy(courseID, result)
	return result, nil
}

// archiveCopy keeps a retained copy of the sheet. Archive failures never fail
// the download.
func (s *ExportService) archiveCopy(courseID string, result *ExportResult) {
	if s.archive == nil {
		return
	}
	name := fmt.Sprintf("%s/%s", courseID, result.Filename)
	if _, err := s.archive.Save(name, result.Content); err != nil {
		s.logger.Warn("failed to archive export sheet",
			zap.String("file", name),
			zap.Error(err))
	}
}

func weekDataset(bookings []models.BookingDetail) export.Dataset {
	headers := []string{"Date", "Start", "End", "Student", "Exercise", "Status"}
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		status := "tentative"
		if b.Confirmed {
			status = "booked"
		}
		rows = append(rows, map[string]string{
			"Date":     b.StartAt.Format("Mon 2006-01-02"),
			"Start":    b.StartAt.Format("15:04"),
			"End":      b.EndAt.Format("15:04"),
			"Student":  b.StudentName,
			"Exercise": b.ExerciseName,
			"Status":   strings.ToUpper(status),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
