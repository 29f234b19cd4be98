package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
)

// DisplayWindow is how long a notification stays up before auto-dismissal.
const DisplayWindow = 5 * time.Second

// Notifier is the notification sink: it receives payloads from the
// reminder scheduler and a dismiss signal from user actions.
type Notifier interface {
	Show(n models.Notification)
	Dismiss()
	Current() *models.Notification
}

// SlotNotifier keeps a single active notification. A newer notification
// replaces the current one; whichever is active auto-dismisses after the
// display window unless dismissed earlier.
type SlotNotifier struct {
	logger *zap.Logger
	window time.Duration

	mu      sync.Mutex
	current *models.Notification
	timer   *time.Timer
}

// NewSlotNotifier returns a notifier with the standard display window.
func NewSlotNotifier(logger *zap.Logger) *SlotNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotNotifier{logger: logger, window: DisplayWindow}
}

func (s *SlotNotifier) Show(n models.Notification) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	cp := n
	s.current = &cp
	s.timer = time.AfterFunc(s.window, s.Dismiss)
	s.mu.Unlock()
	s.logger.Info("notification shown",
		zap.String("title", n.Title),
		zap.String("class_id", n.ClassID),
		zap.String("subject", n.Subject),
	)
}

func (s *SlotNotifier) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.current = nil
}

func (s *SlotNotifier) Current() *models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}
