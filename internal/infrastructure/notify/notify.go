package notify

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/logger"
)

// Scheduler delivers end-of-session alerts to the terminal. Delivery is
// fire-and-forget; the timer never observes whether an alert fired.
type Scheduler struct {
	logger *logger.Logger

	mu      sync.Mutex
	pending []*time.Timer
}

// NewScheduler creates a terminal alert scheduler.
func NewScheduler(logger *logger.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Schedule arms an alert that fires once the given duration elapses.
func (s *Scheduler) Schedule(phase entities.SessionPhase, after time.Duration) {
	message := "Break finished, get back to work!"
	if phase == entities.PhaseStudy {
		message = "Study session finished, starting break"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	timer := time.AfterFunc(after, func() {
		// Terminal bell plus the message; closest local equivalent of a
		// push notification.
		fmt.Fprintf(os.Stderr, "\a%s\n", message)
		s.logger.Infow("Pomodoro alert fired", "phase", phase)
	})
	s.pending = append(s.pending, timer)
}

// CancelAll disarms every pending alert.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.pending {
		t.Stop()
	}
	s.pending = nil
}

// NopSleepInhibitor is the sleep guard for platforms without an idle-sleep
// capability. The composition root decides which implementation to wire.
type NopSleepInhibitor struct{}

func (NopSleepInhibitor) Inhibit() {}
func (NopSleepInhibitor) Release() {}
