package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/pkg/clock"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
)

// TimetableExtractor turns a captured timetable image into a Timetable.
// The real OCR pipeline lives behind this interface; extraction may be
// slow and must respect the context deadline.
type TimetableExtractor interface {
	Extract(ctx context.Context, source []byte) (*models.Timetable, error)
}

var extractorSubjects = []string{
	"Mathematics", "Physics", "Computer Science", "Data Structures",
	"Digital Logic", "Economics", "English", "Operating Systems",
}

// MockExtractor fabricates a plausible Monday-Friday timetable: 3-5
// classes per day starting at 09:00 with a lunch gap at 12:00. It stands
// in for the OCR pipeline.
type MockExtractor struct {
	clock clock.Clock
}

// NewMockExtractor constructs the mock.
func NewMockExtractor(clk clock.Clock) *MockExtractor {
	return &MockExtractor{clock: clk}
}

// Extract ignores the source bytes and generates a fresh timetable.
func (e *MockExtractor) Extract(ctx context.Context, _ []byte) (*models.Timetable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := e.clock.Now()
	rng := rand.New(rand.NewSource(now.UnixNano()))

	tt := NewEmptyTimetable("Extracted Timetable", now)
	for i, day := range tt.Schedule {
		weekday, ok := models.ParseDay(day.Day)
		if !ok || weekday == time.Saturday || weekday == time.Sunday {
			continue
		}
		numClasses := rng.Intn(3) + 3
		classes := make([]models.ClassSession, 0, numClasses)
		hour := 9
		for j := 0; j < numClasses; j++ {
			classes = append(classes, models.ClassSession{
				ID:        fmt.Sprintf("%s-%d", strings.ToLower(day.Day), j),
				Subject:   extractorSubjects[rng.Intn(len(extractorSubjects))],
				StartTime: fmt.Sprintf("%02d:00", hour),
				EndTime:   fmt.Sprintf("%02d:00", hour+1),
				Room:      fmt.Sprintf("Room %d", 100+rng.Intn(50)),
			})
			hour++
			if hour == 12 {
				hour++
			}
		}
		tt.Schedule[i].Classes = classes
	}
	return tt, nil
}

// ExtractionService runs the extractor under a timeout and stores the
// resulting timetable. Failures are surfaced, never swallowed; state is
// unchanged on error.
type ExtractionService struct {
	extractor TimetableExtractor
	state     *state.Store
	timeout   time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewExtractionService constructs the service.
func NewExtractionService(extractor TimetableExtractor, st *state.Store, timeout time.Duration, metrics *MetricsService, logger *zap.Logger) *ExtractionService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtractionService{extractor: extractor, state: st, timeout: timeout, metrics: metrics, logger: logger}
}

// ExtractAndStore extracts a timetable from the source image and persists
// it, replacing any prior timetable.
func (s *ExtractionService) ExtractAndStore(ctx context.Context, source []byte) (*models.Timetable, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tt, err := s.extractor.Extract(ctx, source)
	if err != nil {
		s.metrics.ExtractionResult(false)
		s.logger.Warn("timetable extraction failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExtraction.Code, appErrors.ErrExtraction.Status, appErrors.ErrExtraction.Message)
	}
	s.metrics.ExtractionResult(true)
	if err := s.state.SaveTimetable(ctx, tt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store timetable")
	}
	s.logger.Info("timetable extracted", zap.String("timetable_id", tt.ID))
	return tt, nil
}
