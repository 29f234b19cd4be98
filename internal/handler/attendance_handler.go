package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariom18august-ui/Markit/internal/service"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
	"github.com/hariom18august-ui/Markit/pkg/response"
)

// AttendanceHandler manages the attendance ledger endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	exports    *service.ExportService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService, exports *service.ExportService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, exports: exports}
}

// Mark upserts one attendance record.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.attendance.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// MarkDay records present for every session occurring today.
func (h *AttendanceHandler) MarkDay(c *gin.Context) {
	marked, err := h.attendance.MarkAllToday(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"marked": marked})
}

// Status reports the status for (?date=&classId=).
func (h *AttendanceHandler) Status(c *gin.Context) {
	date := c.Query("date")
	classID := c.Query("classId")
	if date == "" || classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date and classId are required"))
		return
	}
	status, err := h.attendance.StatusOf(c.Request.Context(), date, classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"date": date, "classId": classID, "status": status})
}

// Stats returns overall and per-subject aggregates.
func (h *AttendanceHandler) Stats(c *gin.Context) {
	overall, err := h.attendance.StatsOverall(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	subjects, err := h.attendance.StatsBySubject(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"overall": overall, "subjects": subjects})
}

// History returns the ledger grouped by date, most recent first.
func (h *AttendanceHandler) History(c *gin.Context) {
	history, err := h.attendance.History(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history)
}

// Export streams the attendance summary (?format=csv|pdf, default csv).
func (h *AttendanceHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.ExportFormatCSV)
	file, err := h.exports.AttendanceSummary(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
