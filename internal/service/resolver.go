package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
)

// ScheduleResolver derives which sessions and exams fall on a calendar
// date. All methods are pure over the given timetable.
type ScheduleResolver struct {
	logger *zap.Logger
}

// NewScheduleResolver constructs the resolver.
func NewScheduleResolver(logger *zap.Logger) *ScheduleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleResolver{logger: logger}
}

// SessionsOn returns the ordered class sessions for the date: recurring
// first, then extras, each in source order. Holidays suppress everything;
// exams are resolved separately and are not suppressed.
func (r *ScheduleResolver) SessionsOn(tt *models.Timetable, date time.Time) []models.ResolvedSession {
	if tt == nil {
		return nil
	}
	if tt.IsHoliday(models.FormatDate(date)) {
		return []models.ResolvedSession{}
	}
	return r.classSessions(tt, date)
}

// ExamsOn returns all exams on the date, independent of holiday status.
func (r *ScheduleResolver) ExamsOn(tt *models.Timetable, date time.Time) []models.Exam {
	if tt == nil {
		return nil
	}
	day := models.FormatDate(date)
	var exams []models.Exam
	for _, e := range tt.Exams {
		if e.Date == day {
			exams = append(exams, e)
		}
	}
	return exams
}

// AllOn returns recurring + extra + exam occurrences for the date without
// holiday suppression. This feeds mark-whole-day, which records the day as
// scheduled regardless of a holiday flag.
func (r *ScheduleResolver) AllOn(tt *models.Timetable, date time.Time) []models.ResolvedSession {
	if tt == nil {
		return nil
	}
	sessions := r.classSessions(tt, date)
	for _, e := range r.ExamsOn(tt, date) {
		sessions = append(sessions, models.ResolvedSession{
			ID:        e.ID,
			Subject:   e.Subject,
			StartTime: e.Time,
			Room:      e.Room,
			Kind:      models.SessionExam,
		})
	}
	return sessions
}

// ViewOn bundles the calendar surface for one date.
func (r *ScheduleResolver) ViewOn(tt *models.Timetable, date time.Time) models.DayView {
	day := models.FormatDate(date)
	view := models.DayView{
		Date:     day,
		Sessions: []models.ResolvedSession{},
		Exams:    []models.Exam{},
	}
	if tt == nil {
		return view
	}
	for _, h := range tt.Holidays {
		if h.Date == day {
			view.Holiday = true
			view.Reason = h.Reason
			break
		}
	}
	if !view.Holiday {
		view.Sessions = append(view.Sessions, r.classSessions(tt, date)...)
	}
	view.Exams = append(view.Exams, r.ExamsOn(tt, date)...)
	return view
}

// ViewMonth resolves every date of the given month.
func (r *ScheduleResolver) ViewMonth(tt *models.Timetable, year int, month time.Month) []models.DayView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	views := make([]models.DayView, 0, 31)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		views = append(views, r.ViewOn(tt, d))
	}
	return views
}

func (r *ScheduleResolver) classSessions(tt *models.Timetable, date time.Time) []models.ResolvedSession {
	day := models.FormatDate(date)
	var sessions []models.ResolvedSession
	for _, c := range tt.DaySchedule(date.Weekday()) {
		sessions = append(sessions, models.ResolvedSession{
			ID:        c.ID,
			Subject:   c.Subject,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Room:      c.Room,
			Kind:      models.SessionRecurring,
		})
	}
	for _, c := range tt.ExtraClasses {
		if c.Date != day {
			continue
		}
		sessions = append(sessions, models.ResolvedSession{
			ID:        c.ID,
			Subject:   c.Subject,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Room:      c.Room,
			Kind:      models.SessionExtra,
		})
	}
	return sessions
}
