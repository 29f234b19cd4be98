package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/pkg/clock"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
)

func newLedger(t *testing.T) (*AttendanceService, *clock.Fake) {
	t.Helper()
	st := newTestState()
	clk := clock.NewFake(monday)
	resolver := NewScheduleResolver(nil)
	require.NoError(t, st.SaveTimetable(context.Background(), mondayTimetable()))
	return NewAttendanceService(st, resolver, clk, nil, nil), clk
}

func TestMarkIsIdempotentPerKey(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	req := MarkAttendanceRequest{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "present"}
	_, err := svc.Mark(ctx, req)
	require.NoError(t, err)
	_, err = svc.Mark(ctx, req)
	require.NoError(t, err)

	stats, err := svc.StatsOverall(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Present)
}

func TestMarkOverridesPriorStatus(t *testing.T) {
	svc, clk := newLedger(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "present"})
	require.NoError(t, err)
	clk.Advance(time.Minute)
	record, err := svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "absent"})
	require.NoError(t, err)

	status, err := svc.StatusOf(ctx, "2025-01-06", "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, status)

	stats, err := svc.StatsOverall(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, clk.Now().UnixMilli(), record.Timestamp)
}

func TestMarkRejectsPendingStatus(t *testing.T) {
	svc, _ := newLedger(t)
	_, err := svc.Mark(context.Background(), MarkAttendanceRequest{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "pending"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStatusOfDefaultsToPending(t *testing.T) {
	svc, _ := newLedger(t)
	status, err := svc.StatusOf(context.Background(), "2025-01-06", "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)
}

func TestMarkAllTodayCoversRegularExtraAndExam(t *testing.T) {
	st := newTestState()
	clk := clock.NewFake(monday)
	resolver := NewScheduleResolver(nil)
	tt := mondayTimetable()
	tt.ExtraClasses = []models.ExtraClass{
		{ID: "x1", Date: "2025-01-06", Subject: "Economics", StartTime: "14:00", EndTime: "15:00"},
	}
	tt.Exams = []models.Exam{{ID: "e1", Date: "2025-01-06", Subject: "Math", Type: "Quiz"}}
	ctx := context.Background()
	require.NoError(t, st.SaveTimetable(ctx, tt))
	svc := NewAttendanceService(st, resolver, clk, nil, nil)

	// A record on another date must survive untouched.
	_, err := svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-01-03", ClassID: "f1", Subject: "English", Status: "absent"})
	require.NoError(t, err)

	marked, err := svc.MarkAllToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, marked)

	for _, id := range []string{"m1", "m2", "x1", "e1"} {
		status, err := svc.StatusOf(ctx, "2025-01-06", id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPresent, status, id)
	}
	status, err := svc.StatusOf(ctx, "2025-01-03", "f1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, status)
}

func TestMarkAllTodayReplacesTodayBucket(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	_, err := svc.Mark(ctx, MarkAttendanceRequest{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "absent"})
	require.NoError(t, err)

	marked, err := svc.MarkAllToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	status, err := svc.StatusOf(ctx, "2025-01-06", "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, status)

	stats, err := svc.StatsOverall(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestMarkAllTodayWithoutTimetable(t *testing.T) {
	st := newTestState()
	svc := NewAttendanceService(st, NewScheduleResolver(nil), clock.NewFake(monday), nil, nil)
	_, err := svc.MarkAllToday(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoTimetable.Code, appErrors.FromError(err).Code)
}

func TestStatsBySubjectSortedDescending(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	marks := []MarkAttendanceRequest{
		{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "present"},
		{Date: "2025-01-07", ClassID: "m1", Subject: "Math", Status: "absent"},
		{Date: "2025-01-06", ClassID: "m2", Subject: "Physics", Status: "present"},
		{Date: "2025-01-07", ClassID: "m2", Subject: "Physics", Status: "present"},
		{Date: "2025-01-08", ClassID: "m2", Subject: "Physics", Status: "present"},
		{Date: "2025-01-06", ClassID: "e1", Subject: "English", Status: "absent"},
	}
	for _, m := range marks {
		_, err := svc.Mark(ctx, m)
		require.NoError(t, err)
	}

	stats, err := svc.StatsBySubject(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, "Physics", stats[0].Subject)
	assert.Equal(t, 100, stats[0].Percentage)
	assert.Equal(t, "Math", stats[1].Subject)
	assert.Equal(t, 50, stats[1].Percentage)
	assert.Equal(t, "English", stats[2].Subject)
	assert.Equal(t, 0, stats[2].Percentage)
}

func TestStatsEmptyLedgerYieldsZeroNotFault(t *testing.T) {
	svc, _ := newLedger(t)
	stats, err := svc.StatsOverall(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.OverallStats{}, stats)

	bySubject, err := svc.StatsBySubject(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bySubject)
}

func TestHistoryGroupsByDateDescending(t *testing.T) {
	svc, _ := newLedger(t)
	ctx := context.Background()

	for _, m := range []MarkAttendanceRequest{
		{Date: "2025-01-03", ClassID: "m1", Subject: "Math", Status: "present"},
		{Date: "2025-01-06", ClassID: "m1", Subject: "Math", Status: "present"},
		{Date: "2025-01-06", ClassID: "m2", Subject: "Physics", Status: "absent"},
	} {
		_, err := svc.Mark(ctx, m)
		require.NoError(t, err)
	}

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "2025-01-06", history[0].Date)
	assert.Len(t, history[0].Records, 2)
	assert.Equal(t, "2025-01-03", history[1].Date)
}
