package services

import (
	"time"

	"github.com/iristrack/core/internal/domain/entities"
	"github.com/iristrack/core/internal/infrastructure/config"
	"github.com/iristrack/core/internal/infrastructure/logger"
	"github.com/iristrack/core/internal/ports"
)

// TimerService runs a single pomodoro countdown: a study interval chaining
// into a break interval. Ticks arrive from an external once-per-second clock
// source; wall-clock deltas recover time lost while the process was
// suspended. Operations are pure state transitions and cannot fail; the only
// fallible side effect, scheduling an alert, is fire-and-forget.
type TimerService struct {
	alerts ports.AlertScheduler
	sleep  ports.SleepInhibitor
	logger *logger.Logger

	defaultStudyMinutes int
	defaultBreakMinutes int
	studyMinutes        int
	breakMinutes        int

	state     entities.StudySession
	listeners []func(entities.StudySession)
	now       func() time.Time
}

// NewTimerService creates a new timer service
func NewTimerService(cfg config.TimerConfig, alerts ports.AlertScheduler, sleep ports.SleepInhibitor, logger *logger.Logger) *TimerService {
	return &TimerService{
		alerts:              alerts,
		sleep:               sleep,
		logger:              logger,
		defaultStudyMinutes: cfg.StudyMinutes,
		defaultBreakMinutes: cfg.BreakMinutes,
		studyMinutes:        cfg.StudyMinutes,
		breakMinutes:        cfg.BreakMinutes,
		state:               entities.StudySession{Phase: entities.PhaseStudy},
		now:                 time.Now,
	}
}

// Snapshot returns the current countdown state.
func (s *TimerService) Snapshot() entities.StudySession {
	return s.state
}

// StudyMinutes returns the configured study interval.
func (s *TimerService) StudyMinutes() int { return s.studyMinutes }

// BreakMinutes returns the configured break interval.
func (s *TimerService) BreakMinutes() int { return s.breakMinutes }

// SetStudyMinutes updates the study interval. Only allowed while inactive.
func (s *TimerService) SetStudyMinutes(minutes int) error {
	if s.state.State != entities.TimerInactive {
		return entities.ErrTimerActive
	}
	if minutes > 0 {
		s.studyMinutes = minutes
	}
	return nil
}

// SetBreakMinutes updates the break interval. Only allowed while inactive.
func (s *TimerService) SetBreakMinutes(minutes int) error {
	if s.state.State != entities.TimerInactive {
		return entities.ErrTimerActive
	}
	if minutes > 0 {
		s.breakMinutes = minutes
	}
	return nil
}

// RegisterListener adds a callback invoked after every state transition.
func (s *TimerService) RegisterListener(fn func(entities.StudySession)) {
	s.listeners = append(s.listeners, fn)
}

func (s *TimerService) notify() {
	for _, fn := range s.listeners {
		fn(s.state)
	}
}

// Start arms the countdown for the current phase. A no-op unless inactive.
func (s *TimerService) Start() {
	if s.state.State != entities.TimerInactive {
		return
	}

	minutes := s.studyMinutes
	if s.state.Phase == entities.PhaseBreak {
		minutes = s.breakMinutes
	}

	s.state.State = entities.TimerRunning
	s.state.Remaining = minutes * 60
	s.state.Total = s.state.Remaining

	s.alerts.Schedule(s.state.Phase, time.Duration(s.state.Remaining)*time.Second)
	s.sleep.Inhibit()

	s.logger.Infow("Timer started", "phase", s.state.Phase, "seconds", s.state.Remaining)
	s.notify()
}

// Pause suspends a running countdown and cancels the pending alert so it
// cannot fire mid-pause.
func (s *TimerService) Pause() {
	if s.state.State != entities.TimerRunning {
		return
	}

	s.state.State = entities.TimerPaused
	s.alerts.CancelAll()
	s.notify()
}

// Resume continues a paused countdown, rescheduling the alert for the
// shortened remaining time.
func (s *TimerService) Resume() {
	if s.state.State != entities.TimerPaused {
		return
	}

	s.state.State = entities.TimerRunning
	s.alerts.Schedule(s.state.Phase, time.Duration(s.state.Remaining)*time.Second)
	s.notify()
}

// Tick advances the countdown by one second. The external clock source is
// not trusted for periodicity; OnForeground recovers wall-clock drift. A
// no-op unless running.
func (s *TimerService) Tick() {
	if s.state.State != entities.TimerRunning {
		return
	}

	s.state.Remaining--
	if s.state.Remaining > 0 {
		s.notify()
		return
	}

	s.state.State = entities.TimerInactive
	s.state.Remaining = 0

	if s.state.Phase == entities.PhaseStudy {
		// Study finished: chain straight into the break.
		s.state.Phase = entities.PhaseBreak
		s.Start()
		return
	}

	s.Stop()
}

// Stop resets the countdown to fully idle: inactive, study phase, zero
// durations and default interval configuration.
func (s *TimerService) Stop() {
	s.state = entities.StudySession{Phase: entities.PhaseStudy, State: entities.TimerInactive}
	s.studyMinutes = s.defaultStudyMinutes
	s.breakMinutes = s.defaultBreakMinutes

	s.sleep.Release()
	s.alerts.CancelAll()

	s.logger.Infow("Timer stopped")
	s.notify()
}

// OnBackground snapshots the wall clock so the countdown can catch up when
// the process resumes. A no-op unless running.
func (s *TimerService) OnBackground() {
	if s.state.State != entities.TimerRunning {
		return
	}
	s.state.LastActive = s.now()
}

// OnForeground recomputes remaining time from the wall-clock delta since
// OnBackground. If the configured interval fully elapsed while suspended, a
// study session rolls into its break (with the overshoot deducted) and a
// break session stops. A no-op unless running.
func (s *TimerService) OnForeground() {
	if s.state.State != entities.TimerRunning {
		return
	}

	elapsed := int(s.now().Sub(s.state.LastActive).Seconds())

	if s.state.Remaining-elapsed > 0 {
		// Clock caught up silently; the pending alert is still correct.
		s.state.Remaining -= elapsed
		s.notify()
		return
	}

	overshoot := elapsed - s.state.Remaining

	if s.state.Phase == entities.PhaseStudy {
		remaining := s.breakMinutes*60 - overshoot
		if remaining > 0 {
			s.state.Phase = entities.PhaseBreak
			s.state.Remaining = remaining
			s.state.Total = s.breakMinutes * 60
			s.alerts.Schedule(entities.PhaseBreak, time.Duration(remaining)*time.Second)
			s.notify()
			return
		}
	}

	s.Stop()
}
