// Package tui renders an in-flight try-on as a terminal progress bar.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"luastyle/internal/application/usecases"
)

const (
	padding      = 2
	maxWidth     = 80
	pollInterval = 150 * time.Millisecond
)

// ErrInterrupted is returned when the user leaves before the try-on settles.
var ErrInterrupted = errors.New("try-on interrupted")

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B4235A"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EEEEEE"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262")).Render
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// SnapshotFunc reads the current state of the session being watched.
type SnapshotFunc func(ctx context.Context) (*usecases.SessionOutput, error)

type tickMsg time.Time

type doneMsg struct {
	err error
}

type Model struct {
	ctx      context.Context
	snapshot SnapshotFunc

	progress progress.Model
	percent  float64
	message  string

	finished    bool
	interrupted bool
	err         error
}

func NewModel(ctx context.Context, snapshot SnapshotFunc) Model {
	bar := progress.New(progress.WithGradient("#F7A1C4", "#B4235A"))
	bar.Width = maxWidth
	return Model{
		ctx:      ctx,
		snapshot: snapshot,
		progress: bar,
	}
}

func poll() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return poll()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.finished {
				m.interrupted = true
			}
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil

	case tickMsg:
		if m.finished {
			return m, nil
		}
		out, err := m.snapshot(m.ctx)
		if err != nil {
			return m, poll()
		}
		m.message = out.Message
		m.percent = out.Progress / 100
		return m, poll()

	case doneMsg:
		m.finished = true
		m.err = msg.err
		if msg.err == nil {
			m.percent = 1
		}
		return m, tea.Quit

	default:
		return m, nil
	}
}

func (m Model) View() string {
	pad := strings.Repeat(" ", padding)

	var b strings.Builder
	b.WriteString("\n" + pad + titleStyle.Render("LuaStyle") + "\n\n")
	b.WriteString(pad + m.progress.ViewAs(m.percent) + "\n\n")

	switch {
	case m.finished && m.err != nil:
		b.WriteString(pad + errorStyle.Render(m.err.Error()) + "\n")
	case m.finished:
		b.WriteString(pad + messageStyle.Render("Your look is ready.") + "\n")
	default:
		b.WriteString(pad + messageStyle.Render(m.message) + "\n\n")
		b.WriteString(pad + helpStyle("Press q to cancel"))
	}
	return b.String()
}

// Run shows the progress of a try-on until done yields its outcome. When the
// user quits first, cancel is called and the cancelled outcome is drained
// before ErrInterrupted is returned.
func Run(ctx context.Context, snapshot SnapshotFunc, done <-chan error, cancel func()) error {
	p := tea.NewProgram(NewModel(ctx, snapshot), tea.WithContext(ctx))

	outcome := make(chan error, 1)
	go func() {
		err := <-done
		outcome <- err
		p.Send(doneMsg{err: err})
	}()

	final, runErr := p.Run()
	m, ok := final.(Model)
	if ok && m.finished {
		return m.err
	}

	cancel()
	<-outcome
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("error running progress TUI: %w", runErr)
	}
	return ErrInterrupted
}
