// Package tui renders live council run progress in the terminal. It
// follows the bubbletea Elm loop: pipeline events arrive as messages on
// a channel, Update folds them into the model, View draws the phase
// checklist, the per-item completion feed, and finally the winner.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/artali/council/internal/council"
	"github.com/artali/council/internal/event"
	"github.com/artali/council/internal/roles"
)

// DoneMsg ends the run view. The surface that ran the pipeline sends it
// after Run returns and the artifact is saved.
type DoneMsg struct {
	State     *council.CouncilState
	SavedPath string
	Err       error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	phaseDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	phaseRunningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	phasePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	feedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	winnerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)
)

// maxFeedLines bounds the completion feed so long runs don't scroll the
// phase list off screen.
const maxFeedLines = 12

type phaseStatus int

const (
	phasePending phaseStatus = iota
	phaseRunning
	phaseDone
)

// Model is the bubbletea model for a live run.
type Model struct {
	plan   roles.SuggestedPlan
	events <-chan tea.Msg

	spinner  spinner.Model
	phases   []string
	statuses map[string]phaseStatus
	feed     []string

	done      bool
	state     *council.CouncilState
	savedPath string
	err       error
	quitting  bool
}

// New builds the run view for a plan. Pipeline events are read from
// events; the caller closes the loop by sending DoneMsg on it.
func New(plan roles.SuggestedPlan, events <-chan tea.Msg) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = phaseRunningStyle

	phases := []string{
		council.PhaseDrafts,
		council.PhaseReviews,
		council.PhaseRevisions,
		council.PhaseJudge,
	}
	statuses := make(map[string]phaseStatus, len(phases))
	for _, p := range phases {
		statuses[p] = phasePending
	}

	return Model{
		plan:     plan,
		events:   events,
		spinner:  sp,
		phases:   phases,
		statuses: statuses,
	}
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case event.PhaseStartedEvent:
		m.statuses[msg.Phase] = phaseRunning
		return m, waitForEvent(m.events)

	case event.PhaseEndedEvent:
		m.statuses[msg.Phase] = phaseDone
		return m, waitForEvent(m.events)

	case event.DraftCompletedEvent:
		line := fmt.Sprintf("draft from %s", msg.Provider)
		if msg.Failed {
			line = failStyle.Render(line + " (failed)")
		}
		m.pushFeed(line)
		return m, waitForEvent(m.events)

	case event.ReviewCompletedEvent:
		line := fmt.Sprintf("review %s -> %s", msg.Reviewer, msg.Target)
		if msg.Attempts > 1 {
			line += fmt.Sprintf(" (attempt %d)", msg.Attempts)
		}
		if !msg.Parsed {
			line = failStyle.Render(line + " (unparsed)")
		}
		m.pushFeed(line)
		return m, waitForEvent(m.events)

	case event.RevisionCompletedEvent:
		line := fmt.Sprintf("revision from %s", msg.Provider)
		if msg.KeptDraft {
			line += " (kept draft)"
		}
		m.pushFeed(line)
		return m, waitForEvent(m.events)

	case event.JudgeCompletedEvent:
		line := fmt.Sprintf("judge %s ruled", msg.Provider)
		if !msg.Parsed {
			line = failStyle.Render(line + " (verdict unparsed, deterministic fallback)")
		}
		m.pushFeed(line)
		return m, waitForEvent(m.events)

	case event.WinnerSelectedEvent:
		return m, waitForEvent(m.events)

	case DoneMsg:
		m.done = true
		m.state = msg.State
		m.savedPath = msg.SavedPath
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

func (m *Model) pushFeed(line string) {
	m.feed = append(m.feed, line)
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("LLM Council"))
	b.WriteString(fmt.Sprintf("  judge: %s  solvers: %d\n\n", m.plan.Judge.Provider, len(m.plan.Solvers)))

	for _, phase := range m.phases {
		switch m.statuses[phase] {
		case phaseDone:
			b.WriteString(phaseDoneStyle.Render("  ✓ " + phase))
		case phaseRunning:
			b.WriteString(phaseRunningStyle.Render("  " + m.spinner.View() + " " + phase))
		default:
			b.WriteString(phasePendingStyle.Render("  · " + phase))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, line := range m.feed {
		b.WriteString(feedStyle.Render("  " + line))
		b.WriteString("\n")
	}

	if m.done {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(failStyle.Render("run failed: " + m.err.Error()))
			b.WriteString("\n")
		} else if m.state != nil {
			panel := fmt.Sprintf("winner: %s\n\n%s", m.state.WinnerProvider, m.state.WinnerText)
			b.WriteString(winnerStyle.Render(panel))
			b.WriteString("\n")
			if m.savedPath != "" {
				b.WriteString(helpStyle.Render("saved to " + m.savedPath))
				b.WriteString("\n")
			}
		}
		b.WriteString(helpStyle.Render("press q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

// Done reports whether the run has finished.
func (m Model) Done() bool { return m.done }
