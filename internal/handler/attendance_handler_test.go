package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/service"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/internal/store"
	"github.com/hariom18august-ui/Markit/pkg/clock"
)

var handlerMonday = time.Date(2025, 1, 6, 8, 0, 0, 0, time.Local)

func newAttendanceRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := state.New(store.NewMemory(), zap.NewNop())
	clk := clock.NewFake(handlerMonday)
	resolver := service.NewScheduleResolver(nil)

	tt := service.NewEmptyTimetable("Test Timetable", handlerMonday)
	tt.Schedule[0].Classes = []models.ClassSession{
		{ID: "m1", Subject: "Math", StartTime: "09:00", EndTime: "10:00"},
		{ID: "m2", Subject: "Physics", StartTime: "10:00", EndTime: "11:00"},
	}
	require.NoError(t, st.SaveTimetable(context.Background(), tt))

	attendance := service.NewAttendanceService(st, resolver, clk, nil, nil)
	exports := service.NewExportService(attendance, clk, nil)
	h := NewAttendanceHandler(attendance, exports)

	r := gin.New()
	r.POST("/attendance", h.Mark)
	r.POST("/attendance/mark-day", h.MarkDay)
	r.GET("/attendance/status", h.Status)
	r.GET("/attendance/stats", h.Stats)
	r.GET("/attendance/history", h.History)
	r.GET("/attendance/export", h.Export)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	envelope := map[string]json.RawMessage{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func TestMarkAndStatusEndpoints(t *testing.T) {
	r := newAttendanceRouter(t)

	w, envelope := doJSON(t, r, http.MethodPost, "/attendance",
		`{"date":"2025-01-06","classId":"m1","subject":"Math","status":"present"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var record models.AttendanceRecord
	require.NoError(t, json.Unmarshal(envelope["data"], &record))
	assert.Equal(t, "m1", record.ClassID)
	assert.Equal(t, models.StatusPresent, record.Status)
	assert.Equal(t, handlerMonday.UnixMilli(), record.Timestamp)

	w, envelope = doJSON(t, r, http.MethodGet, "/attendance/status?date=2025-01-06&classId=m1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Status models.AttendanceStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &status))
	assert.Equal(t, models.StatusPresent, status.Status)

	w, envelope = doJSON(t, r, http.MethodGet, "/attendance/status?date=2025-01-06&classId=m2", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(envelope["data"], &status))
	assert.Equal(t, models.StatusPending, status.Status)
}

func TestMarkRejectsBadPayload(t *testing.T) {
	r := newAttendanceRouter(t)

	w, envelope := doJSON(t, r, http.MethodPost, "/attendance",
		`{"date":"06/01/2025","classId":"m1","subject":"Math","status":"present"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(envelope["error"]), "VALIDATION_ERROR")
}

func TestStatusRequiresQueryParams(t *testing.T) {
	r := newAttendanceRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/attendance/status?date=2025-01-06", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkDayAndStatsEndpoints(t *testing.T) {
	r := newAttendanceRouter(t)

	w, envelope := doJSON(t, r, http.MethodPost, "/attendance/mark-day", "")
	require.Equal(t, http.StatusOK, w.Code)
	var marked struct {
		Marked int `json:"marked"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &marked))
	assert.Equal(t, 2, marked.Marked)

	w, envelope = doJSON(t, r, http.MethodGet, "/attendance/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Overall  models.OverallStats   `json:"overall"`
		Subjects []models.SubjectStats `json:"subjects"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &stats))
	assert.Equal(t, 2, stats.Overall.Total)
	assert.Equal(t, 100, stats.Overall.Percentage)
	assert.Len(t, stats.Subjects, 2)
}

func TestHistoryEndpoint(t *testing.T) {
	r := newAttendanceRouter(t)

	for _, body := range []string{
		`{"date":"2025-01-03","classId":"f1","subject":"English","status":"absent"}`,
		`{"date":"2025-01-06","classId":"m1","subject":"Math","status":"present"}`,
	} {
		w, _ := doJSON(t, r, http.MethodPost, "/attendance", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w, envelope := doJSON(t, r, http.MethodGet, "/attendance/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history []models.HistoryDay
	require.NoError(t, json.Unmarshal(envelope["data"], &history))
	require.Len(t, history, 2)
	assert.Equal(t, "2025-01-06", history[0].Date)
	assert.Equal(t, "2025-01-03", history[1].Date)
}

func TestExportEndpoint(t *testing.T) {
	r := newAttendanceRouter(t)

	w, _ := doJSON(t, r, http.MethodPost, "/attendance",
		`{"date":"2025-01-06","classId":"m1","subject":"Math","status":"present"}`)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/attendance/export?format=csv", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attendance-summary-2025-01-06.csv")
	assert.Contains(t, rec.Body.String(), "Subject,Present,Total,Percentage")

	req = httptest.NewRequest(http.MethodGet, "/attendance/export?format=xlsx", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
