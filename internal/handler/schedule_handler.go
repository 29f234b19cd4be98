package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/service"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/pkg/clock"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
	"github.com/hariom18august-ui/Markit/pkg/response"
)

// ScheduleHandler serves the resolved day and month views.
type ScheduleHandler struct {
	state    *state.Store
	resolver *service.ScheduleResolver
	clock    clock.Clock
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(st *state.Store, resolver *service.ScheduleResolver, clk clock.Clock) *ScheduleHandler {
	return &ScheduleHandler{state: st, resolver: resolver, clock: clk}
}

// Day returns the resolved view for one date (?date=YYYY-MM-DD, default today).
func (h *ScheduleHandler) Day(c *gin.Context) {
	date := h.clock.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(models.DateLayout, raw, time.Local)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}
	tt, err := h.state.Timetable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.resolver.ViewOn(tt, date))
}

// Month returns one view per date of the month (?year=&month=, default current).
func (h *ScheduleHandler) Month(c *gin.Context) {
	now := h.clock.Now()
	year := now.Year()
	month := now.Month()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
			return
		}
		year = parsed
	}
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid month, expected 1-12"))
			return
		}
		month = time.Month(parsed)
	}
	tt, err := h.state.Timetable(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.resolver.ViewMonth(tt, year, month))
}
