package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/store"
)

// Store is the single application-state object. Every read and write of
// the three persisted blobs (timetable, attendance, settings) goes through
// it: mutations take the writer lock, replace the whole blob, then notify
// subscribers. The process is the only writer.
type Store struct {
	blobs  store.Store
	logger *zap.Logger

	mu          sync.Mutex
	subscribers []func()
}

// New wraps a blob store as the application state.
func New(blobs store.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{blobs: blobs, logger: logger}
}

// Subscribe registers fn to run after every successful mutation. Intended
// for the reminder scheduler's re-evaluation trigger; fn must not block.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Timetable returns the stored timetable, or nil when none has been set up.
func (s *Store) Timetable(ctx context.Context) (*models.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadTimetable(ctx)
}

// SaveTimetable replaces the timetable blob. A nil timetable deletes it.
func (s *Store) SaveTimetable(ctx context.Context, tt *models.Timetable) error {
	s.mu.Lock()
	err := s.saveTimetable(ctx, tt)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// UpdateTimetable applies fn to the current timetable under the writer lock
// and persists the result as one indivisible replacement. fn receives nil
// when no timetable exists and must treat the input as immutable.
func (s *Store) UpdateTimetable(ctx context.Context, fn func(*models.Timetable) *models.Timetable) (*models.Timetable, error) {
	s.mu.Lock()
	current, err := s.loadTimetable(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next := fn(current)
	if err := s.saveTimetable(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()
	s.notify()
	return next, nil
}

// Attendance returns the full ledger, empty when nothing is recorded.
func (s *Store) Attendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadAttendance(ctx)
}

// UpdateAttendance applies fn to the current ledger under the writer lock
// and persists the result. fn must not mutate its input slice.
func (s *Store) UpdateAttendance(ctx context.Context, fn func([]models.AttendanceRecord) []models.AttendanceRecord) ([]models.AttendanceRecord, error) {
	s.mu.Lock()
	current, err := s.loadAttendance(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	next := fn(current)
	if next == nil {
		next = []models.AttendanceRecord{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("encode attendance: %w", err)
	}
	if err := s.blobs.Save(ctx, store.KeyAttendance, data); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()
	s.notify()
	return next, nil
}

// Settings returns the stored settings, falling back to defaults.
func (s *Store) Settings(ctx context.Context) (models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.blobs.Load(ctx, store.KeySettings)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.DefaultSettings(), nil
		}
		return models.AppSettings{}, err
	}
	var settings models.AppSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.AppSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings replaces the settings blob.
func (s *Store) SaveSettings(ctx context.Context, settings models.AppSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	s.mu.Lock()
	err = s.blobs.Save(ctx, store.KeySettings, data)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify()
	return nil
}

// ClearAll removes all three blobs (full data clear).
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	for _, key := range []string{store.KeyTimetable, store.KeyAttendance, store.KeySettings} {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) loadTimetable(ctx context.Context) (*models.Timetable, error) {
	data, err := s.blobs.Load(ctx, store.KeyTimetable)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var tt models.Timetable
	if err := json.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("decode timetable: %w", err)
	}
	return &tt, nil
}

func (s *Store) saveTimetable(ctx context.Context, tt *models.Timetable) error {
	if tt == nil {
		return s.blobs.Delete(ctx, store.KeyTimetable)
	}
	data, err := json.Marshal(tt)
	if err != nil {
		return fmt.Errorf("encode timetable: %w", err)
	}
	return s.blobs.Save(ctx, store.KeyTimetable, data)
}

func (s *Store) loadAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	data, err := s.blobs.Load(ctx, store.KeyAttendance)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []models.AttendanceRecord{}, nil
		}
		return nil, err
	}
	var records []models.AttendanceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return records, nil
}

// notify runs outside the writer lock so subscribers may read state.
func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
