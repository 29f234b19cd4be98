package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariom18august-ui/Markit/internal/models"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
)

func newEditor(t *testing.T) *TimetableService {
	t.Helper()
	st := newTestState()
	require.NoError(t, st.SaveTimetable(context.Background(), mondayTimetable()))
	return NewTimetableService(st, nil, nil)
}

func TestAddHolidayDuplicateDateIsNoOp(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	tt, err := svc.AddHoliday(ctx, AddHolidayRequest{Date: "2025-01-06", Reason: "Festival"})
	require.NoError(t, err)
	require.Len(t, tt.Holidays, 1)

	tt, err = svc.AddHoliday(ctx, AddHolidayRequest{Date: "2025-01-06", Reason: "Again"})
	require.NoError(t, err)
	require.Len(t, tt.Holidays, 1)
	assert.Equal(t, "Festival", tt.Holidays[0].Reason)
}

func TestRemoveHolidayMissingDateIsNoOp(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	_, err := svc.AddHoliday(ctx, AddHolidayRequest{Date: "2025-01-06"})
	require.NoError(t, err)

	tt, err := svc.RemoveHoliday(ctx, "2025-02-01")
	require.NoError(t, err)
	assert.Len(t, tt.Holidays, 1)

	tt, err = svc.RemoveHoliday(ctx, "2025-01-06")
	require.NoError(t, err)
	assert.Empty(t, tt.Holidays)
}

func TestAddExtraClassAssignsUniqueIDs(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	req := AddExtraClassRequest{Date: "2025-01-08", Subject: "Economics", StartTime: "14:00", EndTime: "15:00"}
	first, err := svc.AddExtraClass(ctx, req)
	require.NoError(t, err)
	second, err := svc.AddExtraClass(ctx, req)
	require.NoError(t, err)

	require.Len(t, second.ExtraClasses, 2)
	assert.True(t, strings.HasPrefix(first.ExtraClasses[0].ID, "extra-"))
	assert.NotEqual(t, second.ExtraClasses[0].ID, second.ExtraClasses[1].ID)
}

func TestAddExamValidatesPayload(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	_, err := svc.AddExam(ctx, AddExamRequest{Date: "not-a-date", Subject: "Math", Type: "Quiz"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	tt, err := svc.AddExam(ctx, AddExamRequest{Date: "2025-01-10", Subject: "Math", Type: "Quiz", Time: "10:00"})
	require.NoError(t, err)
	require.Len(t, tt.Exams, 1)
	assert.True(t, strings.HasPrefix(tt.Exams[0].ID, "exam-"))
}

func TestUpdateClassMergesOnlyProvidedFields(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	room := "B-204"
	start := "09:30"
	tt, err := svc.UpdateClass(ctx, "Monday", "m1", ClassPatch{Room: &room, StartTime: &start})
	require.NoError(t, err)

	classes := tt.DaySchedule(time.Monday)
	require.Len(t, classes, 2)
	assert.Equal(t, "Math", classes[0].Subject)
	assert.Equal(t, "09:30", classes[0].StartTime)
	assert.Equal(t, "10:00", classes[0].EndTime)
	assert.Equal(t, "B-204", classes[0].Room)
	assert.Equal(t, models.ClassSession{ID: "m2", Subject: "Physics", StartTime: "10:00", EndTime: "11:00"}, classes[1])
}

func TestUpdateClassMissingIDIsSilentNoOp(t *testing.T) {
	svc := newEditor(t)
	subject := "Chemistry"
	tt, err := svc.UpdateClass(context.Background(), "Monday", "nope", ClassPatch{Subject: &subject})
	require.NoError(t, err)
	for _, c := range tt.DaySchedule(time.Monday) {
		assert.NotEqual(t, "Chemistry", c.Subject)
	}
}

func TestUpdateExtraClassAndExam(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	tt, err := svc.AddExtraClass(ctx, AddExtraClassRequest{Date: "2025-01-08", Subject: "Economics", StartTime: "14:00", EndTime: "15:00"})
	require.NoError(t, err)
	extraID := tt.ExtraClasses[0].ID
	tt, err = svc.AddExam(ctx, AddExamRequest{Date: "2025-01-10", Subject: "Math", Type: "Quiz"})
	require.NoError(t, err)
	examID := tt.Exams[0].ID

	date := "2025-01-09"
	tt, err = svc.UpdateExtraClass(ctx, extraID, ExtraClassPatch{Date: &date})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", tt.ExtraClasses[0].Date)
	assert.Equal(t, "Economics", tt.ExtraClasses[0].Subject)

	kind := "Final"
	tt, err = svc.UpdateExam(ctx, examID, ExamPatch{Type: &kind})
	require.NoError(t, err)
	assert.Equal(t, "Final", tt.Exams[0].Type)
	assert.Equal(t, "2025-01-10", tt.Exams[0].Date)
}

func TestDeleteOperations(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	tt, err := svc.AddExtraClass(ctx, AddExtraClassRequest{Date: "2025-01-08", Subject: "Economics", StartTime: "14:00", EndTime: "15:00"})
	require.NoError(t, err)
	extraID := tt.ExtraClasses[0].ID
	tt, err = svc.AddExam(ctx, AddExamRequest{Date: "2025-01-10", Subject: "Math", Type: "Quiz"})
	require.NoError(t, err)
	examID := tt.Exams[0].ID

	tt, err = svc.DeleteClass(ctx, "Monday", "m1")
	require.NoError(t, err)
	require.Len(t, tt.DaySchedule(time.Monday), 1)
	assert.Equal(t, "m2", tt.DaySchedule(time.Monday)[0].ID)

	tt, err = svc.DeleteExtraClass(ctx, extraID)
	require.NoError(t, err)
	assert.Empty(t, tt.ExtraClasses)

	tt, err = svc.DeleteExam(ctx, examID)
	require.NoError(t, err)
	assert.Empty(t, tt.Exams)

	// Deleting something already gone stays quiet.
	tt, err = svc.DeleteExam(ctx, examID)
	require.NoError(t, err)
	assert.Empty(t, tt.Exams)
}

func TestEditWithoutTimetableFails(t *testing.T) {
	svc := NewTimetableService(newTestState(), nil, nil)
	_, err := svc.AddHoliday(context.Background(), AddHolidayRequest{Date: "2025-01-06"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
}

func TestResetDiscardsTimetable(t *testing.T) {
	svc := newEditor(t)
	ctx := context.Background()

	require.NoError(t, svc.Reset(ctx))
	tt, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, tt)
}
