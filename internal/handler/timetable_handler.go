package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariom18august-ui/Markit/internal/service"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
	"github.com/hariom18august-ui/Markit/pkg/response"
)

// TimetableHandler manages timetable setup and exception editing endpoints.
type TimetableHandler struct {
	extraction *service.ExtractionService
	timetables *service.TimetableService
}

// NewTimetableHandler constructs handler.
func NewTimetableHandler(extraction *service.ExtractionService, timetables *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{extraction: extraction, timetables: timetables}
}

// Extract accepts a timetable image upload and stores the extracted
// timetable. The body is either a multipart "image" field or raw bytes.
func (h *TimetableHandler) Extract(c *gin.Context) {
	source, err := readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	tt, err := h.extraction.ExtractAndStore(c.Request.Context(), source)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tt)
}

// Get returns the stored timetable; data is null when none is set up.
func (h *TimetableHandler) Get(c *gin.Context) {
	tt, err := h.timetables.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// Reset discards the timetable.
func (h *TimetableHandler) Reset(c *gin.Context) {
	if err := h.timetables.Reset(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddHoliday marks a date as a holiday.
func (h *TimetableHandler) AddHoliday(c *gin.Context) {
	var req service.AddHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	tt, err := h.timetables.AddHoliday(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// RemoveHoliday clears the holiday for a date.
func (h *TimetableHandler) RemoveHoliday(c *gin.Context) {
	tt, err := h.timetables.RemoveHoliday(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// AddExtraClass schedules a one-off session.
func (h *TimetableHandler) AddExtraClass(c *gin.Context) {
	var req service.AddExtraClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	tt, err := h.timetables.AddExtraClass(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tt)
}

// UpdateExtraClass patches an extra class by id.
func (h *TimetableHandler) UpdateExtraClass(c *gin.Context) {
	var patch service.ExtraClassPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	tt, err := h.timetables.UpdateExtraClass(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// DeleteExtraClass removes an extra class by id.
func (h *TimetableHandler) DeleteExtraClass(c *gin.Context) {
	tt, err := h.timetables.DeleteExtraClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// AddExam schedules an exam.
func (h *TimetableHandler) AddExam(c *gin.Context) {
	var req service.AddExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	tt, err := h.timetables.AddExam(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tt)
}

// UpdateExam patches an exam by id.
func (h *TimetableHandler) UpdateExam(c *gin.Context) {
	var patch service.ExamPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	tt, err := h.timetables.UpdateExam(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// DeleteExam removes an exam by id.
func (h *TimetableHandler) DeleteExam(c *gin.Context) {
	tt, err := h.timetables.DeleteExam(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// UpdateClass patches a recurring class located by (day, id).
func (h *TimetableHandler) UpdateClass(c *gin.Context) {
	var patch service.ClassPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	tt, err := h.timetables.UpdateClass(c.Request.Context(), c.Param("day"), c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

// DeleteClass removes a recurring class located by (day, id).
func (h *TimetableHandler) DeleteClass(c *gin.Context) {
	tt, err := h.timetables.DeleteClass(c.Request.Context(), c.Param("day"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tt)
}

func readUpload(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable upload")
		}
		defer f.Close() //nolint:errcheck
		return io.ReadAll(f)
	}
	data, err := c.GetRawData()
	if err != nil || len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing timetable image")
	}
	return data, nil
}
