package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/pkg/clock"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
	"github.com/hariom18august-ui/Markit/pkg/export"

	"github.com/hariom18august-ui/Markit/internal/models"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportFile is a rendered attendance summary ready to download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders attendance statistics into downloadable files.
type ExportService struct {
	attendance *AttendanceService
	clock      clock.Clock
	logger     *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(attendance *AttendanceService, clk clock.Clock, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attendance: attendance, clock: clk, logger: logger}
}

// AttendanceSummary renders the per-subject statistics plus an overall row.
func (s *ExportService) AttendanceSummary(ctx context.Context, format string) (*ExportFile, error) {
	subjects, err := s.attendance.StatsBySubject(ctx)
	if err != nil {
		return nil, err
	}
	overall, err := s.attendance.StatsOverall(ctx)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"Subject", "Present", "Total", "Percentage"},
	}
	for _, stat := range subjects {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Subject":    stat.Subject,
			"Present":    strconv.Itoa(stat.Present),
			"Total":      strconv.Itoa(stat.Total),
			"Percentage": fmt.Sprintf("%d%%", stat.Percentage),
		})
	}
	dataset.Rows = append(dataset.Rows, map[string]string{
		"Subject":    "Overall",
		"Present":    strconv.Itoa(overall.Present),
		"Total":      strconv.Itoa(overall.Total),
		"Percentage": fmt.Sprintf("%d%%", overall.Percentage),
	})

	date := models.FormatDate(s.clock.Now())
	switch format {
	case ExportFormatCSV:
		content, err := export.CSV(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("attendance-summary-%s.csv", date),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ExportFormatPDF:
		content, err := export.PDF(dataset, "Attendance Summary")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("attendance-summary-%s.pdf", date),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}
