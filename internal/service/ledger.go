package service

import (
	"context"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/pkg/clock"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
)

// AttendanceService owns the attendance ledger: an append/override log
// keyed by (date, classId).
type AttendanceService struct {
	state     *state.Store
	resolver  *ScheduleResolver
	clock     clock.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the ledger service.
func NewAttendanceService(st *state.Store, resolver *ScheduleResolver, clk clock.Clock, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{state: st, resolver: resolver, clock: clk, validator: validate, logger: logger}
}

// MarkAttendanceRequest describes a single mark operation.
type MarkAttendanceRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	ClassID string `json:"classId" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Status  string `json:"status" validate:"required,oneof=present absent"`
}

// Mark upserts one record: any prior record for (date, classId) is dropped
// before the replacement is appended with the current timestamp.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	record := models.AttendanceRecord{
		Date:      req.Date,
		ClassID:   req.ClassID,
		Subject:   req.Subject,
		Status:    models.AttendanceStatus(req.Status),
		Timestamp: s.clock.Now().UnixMilli(),
	}
	_, err := s.state.UpdateAttendance(ctx, func(records []models.AttendanceRecord) []models.AttendanceRecord {
		next := make([]models.AttendanceRecord, 0, len(records)+1)
		for _, r := range records {
			if r.Date == record.Date && r.ClassID == record.ClassID {
				continue
			}
			next = append(next, r)
		}
		return append(next, record)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return &record, nil
}

// StatusOf reports the recorded status for (date, classId); pending when
// no record exists.
func (s *AttendanceService) StatusOf(ctx context.Context, date, classID string) (models.AttendanceStatus, error) {
	records, err := s.state.Attendance(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance")
	}
	for _, r := range records {
		if r.Date == date && r.ClassID == classID {
			return r.Status, nil
		}
	}
	return models.StatusPending, nil
}

// MarkAllToday records present for every session occurring today
// (recurring + extra + exams), replacing only today's date bucket.
// Returns the number of records written.
func (s *AttendanceService) MarkAllToday(ctx context.Context) (int, error) {
	tt, err := s.state.Timetable(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read timetable")
	}
	if tt == nil {
		return 0, appErrors.ErrNoTimetable
	}
	now := s.clock.Now()
	today := models.FormatDate(now)
	sessions := s.resolver.AllOn(tt, now)
	stamp := now.UnixMilli()

	_, err = s.state.UpdateAttendance(ctx, func(records []models.AttendanceRecord) []models.AttendanceRecord {
		next := make([]models.AttendanceRecord, 0, len(records)+len(sessions))
		for _, r := range records {
			if r.Date == today {
				continue
			}
			next = append(next, r)
		}
		for _, sess := range sessions {
			next = append(next, models.AttendanceRecord{
				Date:      today,
				ClassID:   sess.ID,
				Subject:   sess.Subject,
				Status:    models.StatusPresent,
				Timestamp: stamp,
			})
		}
		return next
	})
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark day")
	}
	return len(sessions), nil
}

// StatsOverall aggregates the whole ledger.
func (s *AttendanceService) StatsOverall(ctx context.Context) (models.OverallStats, error) {
	records, err := s.state.Attendance(ctx)
	if err != nil {
		return models.OverallStats{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance")
	}
	present := 0
	for _, r := range records {
		if r.Status == models.StatusPresent {
			present++
		}
	}
	return models.OverallStats{
		Total:      len(records),
		Present:    present,
		Percentage: percentage(present, len(records)),
	}, nil
}

// StatsBySubject aggregates per subject, sorted by percentage descending.
func (s *AttendanceService) StatsBySubject(ctx context.Context) ([]models.SubjectStats, error) {
	records, err := s.state.Attendance(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance")
	}
	type tally struct {
		present int
		total   int
	}
	bySubject := make(map[string]*tally)
	order := make([]string, 0)
	for _, r := range records {
		t, ok := bySubject[r.Subject]
		if !ok {
			t = &tally{}
			bySubject[r.Subject] = t
			order = append(order, r.Subject)
		}
		t.total++
		if r.Status == models.StatusPresent {
			t.present++
		}
	}
	stats := make([]models.SubjectStats, 0, len(order))
	for _, subject := range order {
		t := bySubject[subject]
		stats = append(stats, models.SubjectStats{
			Subject:    subject,
			Present:    t.present,
			Total:      t.total,
			Percentage: percentage(t.present, t.total),
		})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Percentage > stats[j].Percentage
	})
	return stats, nil
}

// History groups records by date, most recent date first.
func (s *AttendanceService) History(ctx context.Context) ([]models.HistoryDay, error) {
	records, err := s.state.Attendance(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance")
	}
	byDate := make(map[string][]models.AttendanceRecord)
	dates := make([]string, 0)
	for _, r := range records {
		if _, ok := byDate[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		byDate[r.Date] = append(byDate[r.Date], r)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	history := make([]models.HistoryDay, 0, len(dates))
	for _, date := range dates {
		history = append(history, models.HistoryDay{Date: date, Records: byDate[date]})
	}
	return history, nil
}

// percentage is round(present/total*100); 0 when total is 0, never a
// division fault.
func percentage(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}
