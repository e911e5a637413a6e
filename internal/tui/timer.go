// Package tui renders the pomodoro timer in the terminal. All countdown
// logic lives in the timer service; this model only feeds it ticks and
// suspend/resume events and draws snapshots.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iristrack/core/internal/application/services"
	"github.com/iristrack/core/internal/domain/entities"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	studyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	breakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	barFilled  = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	barEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

const barWidth = 40

type tickMsg time.Time

// TimerModel drives the timer service from terminal input and a once-per-
// second tick command.
type TimerModel struct {
	timer    *services.TimerService
	quitting bool
}

// NewTimerModel creates the timer view over the given service.
func NewTimerModel(timer *services.TimerService) TimerModel {
	return TimerModel{timer: timer}
}

// Run starts the interactive timer program and blocks until quit.
func Run(timer *services.TimerService) error {
	_, err := tea.NewProgram(NewTimerModel(timer)).Run()
	return err
}

func (m TimerModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.timer.Tick()
		return m, tick()

	case tea.ResumeMsg:
		// Back from ctrl+z: catch the countdown up with the wall clock.
		m.timer.OnForeground()
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			m.timer.Start()
		case "p":
			m.timer.Pause()
		case "r":
			m.timer.Resume()
		case "x":
			m.timer.Stop()
		case "ctrl+z":
			m.timer.OnBackground()
			return m, tea.Suspend
		case "q", "ctrl+c":
			m.timer.Stop()
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m TimerModel) View() string {
	if m.quitting {
		return ""
	}

	state := m.timer.Snapshot()

	phase := studyStyle.Render("Study")
	if state.Phase == entities.PhaseBreak {
		phase = breakStyle.Render("Break")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pomodoro Timer"))
	b.WriteString("  " + phase + " · " + state.State.String() + "\n\n")
	b.WriteString(clockStyle.Render(state.Clock()))
	b.WriteString("\n\n")
	b.WriteString(progressBar(state.Progress()))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("s start · p pause · r resume · x stop · ctrl+z suspend · q quit"))
	b.WriteString("\n")

	return b.String()
}

func progressBar(progress float64) string {
	filled := int(progress * barWidth)
	if filled > barWidth {
		filled = barWidth
	}

	return barFilled.Render(strings.Repeat("█", filled)) +
		barEmpty.Render(strings.Repeat("░", barWidth-filled))
}
