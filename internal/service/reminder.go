package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hariom18august-ui/Markit/internal/models"
	"github.com/hariom18august-ui/Markit/internal/notify"
	"github.com/hariom18august-ui/Markit/internal/state"
	"github.com/hariom18august-ui/Markit/pkg/clock"
)

// ReminderScheduler owns the outstanding reminder timers. A state change
// (timetable, settings, attendance) triggers one evaluation pass; every
// pass first cancels the previous pass's timers, so at most one timer set
// exists per session instance and no stale reminder fires after an edit.
type ReminderScheduler struct {
	state    *state.Store
	resolver *ScheduleResolver
	notifier notify.Notifier
	clock    clock.Clock
	metrics  *MetricsService
	logger   *zap.Logger

	mu     sync.Mutex
	timers []*time.Timer

	kick    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewReminderScheduler constructs the scheduler and subscribes it to state
// changes. Call Start to begin processing.
func NewReminderScheduler(st *state.Store, resolver *ScheduleResolver, notifier notify.Notifier, clk clock.Clock, metrics *MetricsService, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReminderScheduler{
		state:    st,
		resolver: resolver,
		notifier: notifier,
		clock:    clk,
		metrics:  metrics,
		logger:   logger,
		kick:     make(chan struct{}, 1),
	}
	st.Subscribe(s.Poke)
	return s
}

// Poke requests a re-evaluation. Bursts of state changes coalesce into a
// single pending pass.
func (s *ReminderScheduler) Poke() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Start runs the evaluation loop until the context is cancelled. Safe to
// call once.
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()
	s.logger.Info("reminder scheduler started")
}

// Stop cancels the loop and every outstanding timer. Guaranteed cleanup on
// teardown so no orphaned timer fires against stale state.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.cancelAll()
	s.logger.Info("reminder scheduler stopped")
}

func (s *ReminderScheduler) loop() {
	defer s.wg.Done()
	if _, err := s.Evaluate(s.ctx); err != nil {
		s.logger.Warn("reminder evaluation failed", zap.Error(err))
	}
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
			if _, err := s.Evaluate(s.ctx); err != nil {
				s.logger.Warn("reminder evaluation failed", zap.Error(err))
			}
		}
	}
}

// Evaluate runs one reminder pass and returns how many timers were armed.
// Order of checks mirrors the suppression rules: notifications disabled,
// no timetable, today is a holiday, or the whole day already recorded all
// yield zero timers. An exam tomorrow takes precedence over class
// reminders for this pass.
func (s *ReminderScheduler) Evaluate(ctx context.Context) (int, error) {
	s.cancelAll()

	settings, err := s.state.Settings(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.NotificationsEnabled {
		return 0, nil
	}
	tt, err := s.state.Timetable(ctx)
	if err != nil {
		return 0, err
	}
	if tt == nil {
		return 0, nil
	}

	now := s.clock.Now()
	today := models.FormatDate(now)
	if tt.IsHoliday(today) {
		return 0, nil
	}

	records, err := s.state.Attendance(ctx)
	if err != nil {
		return 0, err
	}
	recorded := make(map[string]struct{})
	for _, r := range records {
		if r.Date == today {
			recorded[r.ClassID] = struct{}{}
		}
	}

	sessions := s.resolver.SessionsOn(tt, now)
	unrecorded := sessions[:0:0]
	for _, sess := range sessions {
		if _, ok := recorded[sess.ID]; !ok {
			unrecorded = append(unrecorded, sess)
		}
	}
	if len(sessions) > 0 && len(unrecorded) == 0 {
		return 0, nil
	}

	// Exam-eve check runs first: one reminder for the first exam tomorrow
	// and no class timers this pass.
	tomorrow := models.FormatDate(now.AddDate(0, 0, 1))
	for _, exam := range tt.Exams {
		if exam.Date == tomorrow {
			s.notifier.Show(examEveNotification(exam))
			s.metrics.ReminderFired("exam_eve")
			s.metrics.ReminderPass(0)
			return 0, nil
		}
	}

	lead := time.Duration(settings.ReminderMinutesBefore) * time.Minute
	armed := 0
	for _, sess := range unrecorded {
		start, err := sessionStart(now, sess.StartTime)
		if err != nil {
			s.logger.Warn("skipping session with bad start time",
				zap.String("class_id", sess.ID),
				zap.String("start_time", sess.StartTime),
			)
			continue
		}
		fireAt := start.Add(-lead)
		if !fireAt.After(now) {
			continue
		}
		sess := sess
		timer := time.AfterFunc(fireAt.Sub(now), func() {
			s.fire(sess, today, settings.ReminderMinutesBefore)
		})
		s.mu.Lock()
		s.timers = append(s.timers, timer)
		s.mu.Unlock()
		armed++
	}
	s.metrics.ReminderPass(armed)
	return armed, nil
}

func (s *ReminderScheduler) fire(sess models.ResolvedSession, date string, lead int) {
	s.notifier.Show(models.Notification{
		Title:   "Class Reminder",
		Body:    fmt.Sprintf("Your %s class starts in %d minutes.", sess.Subject, lead),
		ClassID: sess.ID,
		Subject: sess.Subject,
		Date:    date,
	})
	s.metrics.ReminderFired("class")
	s.logger.Info("class reminder fired",
		zap.String("class_id", sess.ID),
		zap.String("subject", sess.Subject),
	)
}

func (s *ReminderScheduler) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func examEveNotification(exam models.Exam) models.Notification {
	at := ""
	if exam.Time != "" {
		at = " at " + exam.Time
	}
	return models.Notification{
		Title: "Upcoming Exam Tomorrow!",
		Body:  fmt.Sprintf("Don't forget: %s (%s) is scheduled for tomorrow%s.", exam.Subject, exam.Type, at),
	}
}

// sessionStart anchors an HH:mm wall-clock time onto the reference date.
func sessionStart(ref time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse(models.TimeLayout, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), parsed.Hour(), parsed.Minute(), 0, 0, ref.Location()), nil
}
