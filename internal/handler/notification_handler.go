package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/notify"
	"github.com/hariom18august-ui/Markit/internal/service"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
	"github.com/hariom18august-ui/Markit/pkg/response"
)

// Actions a user can take on an active class reminder.
const (
	notificationActionPresent = "present"
	notificationActionHoliday = "holiday"
)

// NotificationHandler exposes the single active notification slot and the
// actions that dismiss it.
type NotificationHandler struct {
	notifier   notify.Notifier
	attendance *service.AttendanceService
	timetables *service.TimetableService
}

// NewNotificationHandler constructs handler.
func NewNotificationHandler(notifier notify.Notifier, attendance *service.AttendanceService, timetables *service.TimetableService) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, attendance: attendance, timetables: timetables}
}

// Current returns the active notification; data is null when none is shown.
func (h *NotificationHandler) Current(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.notifier.Current())
}

// Dismiss closes the active notification.
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	h.notifier.Dismiss()
	response.NoContent(c)
}

// Act applies a user action to the active class reminder: mark the class
// present or mark the day a holiday. Either way the notification clears.
func (h *NotificationHandler) Act(c *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	current := h.notifier.Current()
	if current == nil || current.ClassID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no actionable notification"))
		return
	}
	switch req.Action {
	case notificationActionPresent:
		_, err := h.attendance.Mark(c.Request.Context(), service.MarkAttendanceRequest{
			Date:    current.Date,
			ClassID: current.ClassID,
			Subject: current.Subject,
			Status:  string(models.StatusPresent),
		})
		if err != nil {
			response.Error(c, err)
			return
		}
	case notificationActionHoliday:
		_, err := h.timetables.AddHoliday(c.Request.Context(), service.AddHolidayRequest{Date: current.Date})
		if err != nil {
			response.Error(c, err)
			return
		}
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "action must be present or holiday"))
		return
	}
	h.notifier.Dismiss()
	response.NoContent(c)
}
