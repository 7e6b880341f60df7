package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// SpinnerOptions configures RunWithSpinner
type SpinnerOptions struct {
	// Title is shown beside the spinner
	Title string
	// Output receives the animation; stdout stays reserved for code
	Output io.Writer
	// Enabled turns the animation on. When false fn simply runs.
	Enabled bool
	Styles  Styles
}

type doneMsg struct{ err error }

type spinnerModel struct {
	spinner spinner.Model
	title   string
	styles  Styles
	done    bool
	err     error
}

func newSpinnerModel(title string, styles Styles) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Status
	return spinnerModel{spinner: s, title: title, styles: styles}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s\n", m.spinner.View(), m.styles.Muted.Render(m.title))
}

// RunWithSpinner runs fn while a spinner animates on opts.Output. The
// spinner stops as soon as fn returns; fn's error is returned unchanged.
func RunWithSpinner(ctx context.Context, opts SpinnerOptions, fn func(context.Context) error) error {
	if !opts.Enabled || opts.Output == nil {
		return fn(ctx)
	}

	program := tea.NewProgram(
		newSpinnerModel(opts.Title, opts.Styles),
		tea.WithOutput(opts.Output),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := fn(gctx)
		program.Send(doneMsg{err: err})
		return err
	})
	g.Go(func() error {
		// A failed renderer must not hide fn's result
		_, _ = program.Run()
		return nil
	})

	return g.Wait()
}
