package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/state"
	appErrors "github.com/hariom18august-ui/Markit/pkg/errors"
)

// SettingsService manages the persisted settings singleton and the full
// data clear.
type SettingsService struct {
	state     *state.Store
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(st *state.Store, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{state: st, validator: validate, logger: logger}
}

// Get returns the current settings (defaults before the first update).
func (s *SettingsService) Get(ctx context.Context) (models.AppSettings, error) {
	return s.state.Settings(ctx)
}

// UpdateSettingsRequest replaces the settings singleton.
type UpdateSettingsRequest struct {
	NotificationsEnabled  *bool `json:"notificationsEnabled" validate:"required"`
	ReminderMinutesBefore *int  `json:"reminderMinutesBefore" validate:"required,min=1,max=720"`
}

// Update persists new settings; the reminder scheduler re-evaluates via
// the state change notification.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (models.AppSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.AppSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	settings := models.AppSettings{
		NotificationsEnabled:  *req.NotificationsEnabled,
		ReminderMinutesBefore: *req.ReminderMinutesBefore,
	}
	if err := s.state.SaveSettings(ctx, settings); err != nil {
		return models.AppSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return settings, nil
}

// ClearAll wipes the timetable, the ledger, and the settings blob.
func (s *SettingsService) ClearAll(ctx context.Context) error {
	if err := s.state.ClearAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear data")
	}
	s.logger.Info("all data cleared")
	return nil
}
