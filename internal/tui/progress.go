package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxProgressLines is how many trailing progress lines stay on screen.
const maxProgressLines = 5

type progressMsg string

type jobDoneMsg struct {
	out string
	err error
}

// Job is work run behind the spinner. It reports through progress.
type Job func(ctx context.Context, progress func(string)) (string, error)

type progressModel struct {
	title   string
	spinner spinner.Model
	styles  *StyleSet
	lines   []string

	done bool
	out  string
	err  error
}

func newProgressModel(title string, styles *StyleSet) progressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentTxt

	return progressModel{
		title:   title,
		spinner: sp,
		styles:  styles,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progressMsg:
		m.lines = append(m.lines, string(msg))
		if len(m.lines) > maxProgressLines {
			m.lines = m.lines[len(m.lines)-maxProgressLines:]
		}
		return m, nil
	case jobDoneMsg:
		m.done = true
		m.out = msg.out
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.styles.Title.Render(m.title))
	for _, line := range m.lines {
		fmt.Fprintf(&b, "  %s\n", m.styles.DimTxt.Render(line))
	}
	return b.String()
}

// RunWithSpinner runs job while rendering a spinner and its latest progress
// lines to w. The spinner is cleared before the result is returned.
func RunWithSpinner(ctx context.Context, w io.Writer, title string, styles *StyleSet, job Job) (string, error) {
	p := tea.NewProgram(newProgressModel(title, styles), tea.WithOutput(w), tea.WithContext(ctx))

	go func() {
		out, err := job(ctx, func(line string) { p.Send(progressMsg(line)) })
		p.Send(jobDoneMsg{out: out, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("progress display: %w", err)
	}
	m := final.(progressModel)
	return m.out, m.err
}
