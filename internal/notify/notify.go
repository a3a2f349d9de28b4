// Package notify scans tasks for due and overdue reminders.
//
// The scheduler is the notification collaborator's contract surface: it
// consumes a minimal task projection and exposes one-shot reminders plus
// an idempotently startable/stoppable periodic overdue check. Delivery
// itself (system tray, toast) belongs to the embedding application via
// the Sink.
package notify

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Reminder is the projection of a task the scheduler consumes.
type Reminder struct {
	ID          string
	Title       string
	DueDate     *time.Time
	Status      string
	CompletedAt *time.Time
}

// Sink receives due notifications.
type Sink interface {
	Notify(r Reminder, reason string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Reminder, reason string)

func (f SinkFunc) Notify(r Reminder, reason string) { f(r, reason) }

// Scheduler dispatches reminder and overdue notifications to a Sink.
type Scheduler struct {
	mu      sync.Mutex
	sink    Sink
	log     *log.Logger
	now     func() time.Time
	stop    chan struct{}
	running bool
	timers  map[int]*time.Timer
	nextID  int
}

// NewScheduler creates a scheduler dispatching to sink.
func NewScheduler(sink Sink, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		sink:   sink,
		log:    logger,
		now:    time.Now,
		timers: make(map[int]*time.Timer),
	}
}

// ScheduleReminder fires a one-shot notification lead before the task's
// due date. Tasks without a due date, or whose reminder instant already
// passed, are ignored.
func (s *Scheduler) ScheduleReminder(r Reminder, lead time.Duration) {
	if r.DueDate == nil || r.CompletedAt != nil {
		return
	}
	at := r.DueDate.Add(-lead)
	delay := at.Sub(s.now())
	if delay < 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Fired timers drop their own handle so only pending reminders stay
	// tracked across a long session.
	id := s.nextID
	s.nextID++
	s.timers[id] = time.AfterFunc(delay, func() {
		s.sink.Notify(r, "due-soon")
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
	})
}

// CheckOverdue dispatches a notification for every task past its due
// date and not completed, returning the ids it flagged. Safe to call
// repeatedly; dispatch dedup is the sink's concern.
func (s *Scheduler) CheckOverdue(reminders []Reminder) []string {
	now := s.now()
	var overdue []string
	for _, r := range reminders {
		if r.DueDate == nil || r.CompletedAt != nil {
			continue
		}
		if r.DueDate.Before(now) {
			overdue = append(overdue, r.ID)
			s.sink.Notify(r, "overdue")
		}
	}
	return overdue
}

// StartPeriodicCheck runs CheckOverdue against getTasks every interval.
// Idempotent: a second start while running is a no-op.
func (s *Scheduler) StartPeriodicCheck(getTasks func() []Reminder, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.CheckOverdue(getTasks())
			}
		}
	}()
	s.log.Debug("periodic overdue check started", "interval", interval)
}

// StopPeriodicCheck halts the periodic scan and cancels pending one-shot
// reminders. Idempotent: stopping a stopped scheduler is a no-op.
func (s *Scheduler) StopPeriodicCheck() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = make(map[int]*time.Timer)
	s.log.Debug("periodic overdue check stopped")
}

// Running reports whether the periodic check is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
