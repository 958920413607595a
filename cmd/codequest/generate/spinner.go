package generatecmder

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/codequest/pkg/article"
)

var errInterrupted = errors.New("generation interrupted")

type generateFunc func(ctx context.Context) (*article.Result, error)

type doneMsg struct {
	result *article.Result
	err    error
}

// spinnerModel shows a spinner until the generation finishes.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd

	result *article.Result
	err    error
}

func newSpinnerModel(label string, work tea.Cmd) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(accentColor)),
		),
		label: label,
		work:  work,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.result, m.err = msg.result, msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.err = errInterrupted
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m spinnerModel) View() string {
	if m.result != nil || m.err != nil {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// runWithSpinner runs generate while a spinner is drawn on out. Quitting the
// spinner cancels the generation.
func runWithSpinner(ctx context.Context, out io.Writer, label string, generate generateFunc) (*article.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := func() tea.Msg {
		result, err := generate(ctx)
		return doneMsg{result: result, err: err}
	}

	p := tea.NewProgram(newSpinnerModel(label, work),
		tea.WithOutput(out),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, errInterrupted
		}
		return nil, err
	}

	m, ok := final.(spinnerModel)
	if !ok {
		return nil, errors.New("unexpected spinner state")
	}
	return m.result, m.err
}
