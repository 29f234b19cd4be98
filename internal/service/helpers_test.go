package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/internal/store"
)

// monday is 2025-01-06, a Monday, at 08:00 local time.
var monday = time.Date(2025, 1, 6, 8, 0, 0, 0, time.Local)

func newTestState() *state.Store {
	return state.New(store.NewMemory(), zap.NewNop())
}

func mondayTimetable() *models.Timetable {
	tt := NewEmptyTimetable("Test Timetable", time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local))
	tt.Schedule[0].Classes = []models.ClassSession{
		{ID: "m1", Subject: "Math", StartTime: "09:00", EndTime: "10:00"},
		{ID: "m2", Subject: "Physics", StartTime: "10:00", EndTime: "11:00"},
	}
	return tt
}
