package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/state"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
)

// TimetableService applies the exception-editor transforms: every
// operation is an immutable update of the whole timetable aggregate,
// persisted as one replacement. Edits targeting a missing id are silent
// no-ops.
type TimetableService struct {
	state     *state.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the editor service.
func NewTimetableService(st *state.Store, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{state: st, validator: validate, logger: logger}
}

// Get returns the current timetable, nil when none is set up.
func (s *TimetableService) Get(ctx context.Context) (*models.Timetable, error) {
	return s.state.Timetable(ctx)
}

// Set stores a freshly extracted timetable, replacing any prior one.
func (s *TimetableService) Set(ctx context.Context, tt *models.Timetable) error {
	return s.state.SaveTimetable(ctx, tt)
}

// Reset discards the timetable, returning the app to its initial state.
// The attendance ledger is left untouched.
func (s *TimetableService) Reset(ctx context.Context) error {
	return s.state.SaveTimetable(ctx, nil)
}

// AddHolidayRequest marks a date as a holiday.
type AddHolidayRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason string `json:"reason"`
}

// AddHoliday appends a holiday; adding an already-marked date is a no-op.
func (s *TimetableService) AddHoliday(ctx context.Context, req AddHolidayRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		if tt.IsHoliday(req.Date) {
			return tt
		}
		next := cloneTimetable(tt)
		next.Holidays = append(next.Holidays, models.Holiday{Date: req.Date, Reason: req.Reason})
		return next
	})
}

// RemoveHoliday removes the holiday for a date; missing date is a no-op.
func (s *TimetableService) RemoveHoliday(ctx context.Context, date string) (*models.Timetable, error) {
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		holidays := next.Holidays[:0:0]
		for _, h := range next.Holidays {
			if h.Date != date {
				holidays = append(holidays, h)
			}
		}
		next.Holidays = holidays
		return next
	})
}

// AddExtraClassRequest describes a one-off session on a specific date.
type AddExtraClassRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Subject   string `json:"subject" validate:"required"`
	StartTime string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime   string `json:"endTime" validate:"required,datetime=15:04"`
	Room      string `json:"room"`
}

// AddExtraClass appends an extra class with a fresh unique id.
func (s *TimetableService) AddExtraClass(ctx context.Context, req AddExtraClassRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	extra := models.ExtraClass{
		ID:        "extra-" + uuid.NewString(),
		Date:      req.Date,
		Subject:   req.Subject,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      req.Room,
	}
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		next.ExtraClasses = append(next.ExtraClasses, extra)
		return next
	})
}

// AddExamRequest describes a new exam entry. Type is an open string
// (Midterm, Final, Quiz, Practical, Viva, ...).
type AddExamRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Subject string `json:"subject" validate:"required"`
	Type    string `json:"type" validate:"required"`
	Time    string `json:"time" validate:"omitempty,datetime=15:04"`
	Room    string `json:"room"`
}

// AddExam appends an exam with a fresh unique id.
func (s *TimetableService) AddExam(ctx context.Context, req AddExamRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	exam := models.Exam{
		ID:      "exam-" + uuid.NewString(),
		Date:    req.Date,
		Subject: req.Subject,
		Type:    req.Type,
		Time:    req.Time,
		Room:    req.Room,
	}
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		next.Exams = append(next.Exams, exam)
		return next
	})
}

// ClassPatch carries optional field updates for a class session.
type ClassPatch struct {
	Subject   *string `json:"subject"`
	StartTime *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"endTime" validate:"omitempty,datetime=15:04"`
	Room      *string `json:"room"`
}

// UpdateClass merges the patch into the class located by (dayName, classId).
func (s *TimetableService) UpdateClass(ctx context.Context, dayName, classID string, patch ClassPatch) (*models.Timetable, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		for i, day := range next.Schedule {
			if day.Day != dayName {
				continue
			}
			classes := append([]models.ClassSession(nil), day.Classes...)
			for j, c := range classes {
				if c.ID == classID {
					classes[j] = patchClass(c, patch)
				}
			}
			next.Schedule[i].Classes = classes
		}
		return next
	})
}

// ExtraClassPatch carries optional field updates for an extra class.
type ExtraClassPatch struct {
	Date      *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Subject   *string `json:"subject"`
	StartTime *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime   *string `json:"endTime" validate:"omitempty,datetime=15:04"`
	Room      *string `json:"room"`
}

// UpdateExtraClass merges the patch into the extra class with the given id.
func (s *TimetableService) UpdateExtraClass(ctx context.Context, classID string, patch ExtraClassPatch) (*models.Timetable, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		for i, c := range next.ExtraClasses {
			if c.ID != classID {
				continue
			}
			if patch.Date != nil {
				c.Date = *patch.Date
			}
			if patch.Subject != nil {
				c.Subject = *patch.Subject
			}
			if patch.StartTime != nil {
				c.StartTime = *patch.StartTime
			}
			if patch.EndTime != nil {
				c.EndTime = *patch.EndTime
			}
			if patch.Room != nil {
				c.Room = *patch.Room
			}
			next.ExtraClasses[i] = c
		}
		return next
	})
}

// ExamPatch carries optional field updates for an exam.
type ExamPatch struct {
	Date    *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Subject *string `json:"subject"`
	Type    *string `json:"type"`
	Time    *string `json:"time" validate:"omitempty,datetime=15:04"`
	Room    *string `json:"room"`
}

// UpdateExam merges the patch into the exam with the given id.
func (s *TimetableService) UpdateExam(ctx context.Context, examID string, patch ExamPatch) (*models.Timetable, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		for i, e := range next.Exams {
			if e.ID != examID {
				continue
			}
			if patch.Date != nil {
				e.Date = *patch.Date
			}
			if patch.Subject != nil {
				e.Subject = *patch.Subject
			}
			if patch.Type != nil {
				e.Type = *patch.Type
			}
			if patch.Time != nil {
				e.Time = *patch.Time
			}
			if patch.Room != nil {
				e.Room = *patch.Room
			}
			next.Exams[i] = e
		}
		return next
	})
}

// DeleteClass removes a class from a weekday; missing target is a no-op.
func (s *TimetableService) DeleteClass(ctx context.Context, dayName, classID string) (*models.Timetable, error) {
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		for i, day := range next.Schedule {
			if day.Day != dayName {
				continue
			}
			classes := make([]models.ClassSession, 0, len(day.Classes))
			for _, c := range day.Classes {
				if c.ID != classID {
					classes = append(classes, c)
				}
			}
			next.Schedule[i].Classes = classes
		}
		return next
	})
}

// DeleteExtraClass removes an extra class by id; missing target is a no-op.
func (s *TimetableService) DeleteExtraClass(ctx context.Context, classID string) (*models.Timetable, error) {
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		extras := next.ExtraClasses[:0:0]
		for _, c := range next.ExtraClasses {
			if c.ID != classID {
				extras = append(extras, c)
			}
		}
		next.ExtraClasses = extras
		return next
	})
}

// DeleteExam removes an exam by id; missing target is a no-op.
func (s *TimetableService) DeleteExam(ctx context.Context, examID string) (*models.Timetable, error) {
	return s.update(ctx, func(tt *models.Timetable) *models.Timetable {
		next := cloneTimetable(tt)
		exams := next.Exams[:0:0]
		for _, e := range next.Exams {
			if e.ID != examID {
				exams = append(exams, e)
			}
		}
		next.Exams = exams
		return next
	})
}

// update routes a transform through the state store. When no timetable
// exists the operation fails with NO_TIMETABLE rather than fabricating one.
func (s *TimetableService) update(ctx context.Context, fn func(*models.Timetable) *models.Timetable) (*models.Timetable, error) {
	var missing bool
	tt, err := s.state.UpdateTimetable(ctx, func(current *models.Timetable) *models.Timetable {
		if current == nil {
			missing = true
			return nil
		}
		return fn(current)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}
	if missing {
		return nil, appErrors.ErrNoTimetable
	}
	return tt, nil
}

func patchClass(c models.ClassSession, patch ClassPatch) models.ClassSession {
	if patch.Subject != nil {
		c.Subject = *patch.Subject
	}
	if patch.StartTime != nil {
		c.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		c.EndTime = *patch.EndTime
	}
	if patch.Room != nil {
		c.Room = *patch.Room
	}
	return c
}

// cloneTimetable copies the aggregate and its top-level collections so a
// transform never mutates the input. Day class slices are copied where a
// transform touches them.
func cloneTimetable(tt *models.Timetable) *models.Timetable {
	next := *tt
	next.Schedule = append([]models.DayTimetable(nil), tt.Schedule...)
	next.ExtraClasses = append([]models.ExtraClass(nil), tt.ExtraClasses...)
	next.Holidays = append([]models.Holiday(nil), tt.Holidays...)
	next.Exams = append([]models.Exam(nil), tt.Exams...)
	return &next
}

// NewEmptyTimetable builds a named aggregate with the full seven-day
// skeleton and empty exception sets.
func NewEmptyTimetable(name string, createdAt time.Time) *models.Timetable {
	schedule := make([]models.DayTimetable, 0, len(models.Weekdays))
	for _, d := range models.Weekdays {
		schedule = append(schedule, models.DayTimetable{Day: models.DayName(d), Classes: []models.ClassSession{}})
	}
	return &models.Timetable{
		ID:           uuid.NewString(),
		Name:         name,
		Schedule:     schedule,
		ExtraClasses: []models.ExtraClass{},
		Holidays:     []models.Holiday{},
		Exams:        []models.Exam{},
		CreatedAt:    createdAt.UnixMilli(),
	}
}
