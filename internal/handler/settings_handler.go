package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hariom18august-ui/Markit/internal/notify"
	"github.com/hariom18august-ui/Markit/internal/service"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
	"github.com/hariom18august-ui/Markit/pkg/response"
)

// SettingsHandler manages settings and the full data clear.
type SettingsHandler struct {
	settings *service.SettingsService
	notifier notify.Notifier
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService, notifier notify.Notifier) *SettingsHandler {
	return &SettingsHandler{settings: settings, notifier: notifier}
}

// Get returns the current settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// Update replaces the settings singleton.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req service.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	settings, err := h.settings.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// ClearData wipes all persisted state and drops any active notification.
func (h *SettingsHandler) ClearData(c *gin.Context) {
	if err := h.settings.ClearAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	h.notifier.Dismiss()
	response.NoContent(c)
}
