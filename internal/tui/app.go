package tui

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/tui/styles"
)

// Work is a flow run by App. It streams progress through emit and must
// return once ctx is canceled.
type Work func(ctx context.Context, emit func(Entry)) error

// ErrCanceled is returned by App.Run when the user interrupts the flow.
var ErrCanceled = errors.New("canceled by user")

// App wraps the Bubbletea program that displays a running flow.
type App struct {
	title     string
	themeFile string
	logger    *logging.Logger
	input     io.Reader
	output    io.Writer
	ioSet     bool

	entries []Entry
}

// AppOption configures an App.
type AppOption func(*App)

// WithThemeFile loads a YAML theme and reloads it while the app runs.
func WithThemeFile(path string) AppOption {
	return func(a *App) { a.themeFile = path }
}

// WithAppLogger sets the logger.
func WithAppLogger(logger *logging.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithIO replaces the terminal input and output. A nil in disables
// keyboard input.
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(a *App) {
		a.input = in
		a.output = out
		a.ioSet = true
	}
}

// NewApp creates an app titled title.
func NewApp(title string, opts ...AppOption) *App {
	a := &App{title: title, logger: logging.NopLogger()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.WithComponent("tui")
	return a
}

// Entries returns the entries received during the last Run.
func (a *App) Entries() []Entry {
	return a.entries
}

// Run starts work in the background and displays its entries until it
// finishes. It returns the error from work, or ErrCanceled when the user
// quits first; work's context is canceled in that case.
func (a *App) Run(ctx context.Context, work Work) error {
	if a.themeFile != "" {
		palette, err := styles.LoadPalette(a.themeFile)
		if err != nil {
			a.logger.Warn("failed to load theme", "path", a.themeFile, "error", err)
		} else {
			styles.Apply(palette)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var opts []tea.ProgramOption
	if a.ioSet {
		opts = append(opts, tea.WithInput(a.input), tea.WithOutput(a.output))
	}
	program := tea.NewProgram(NewStreamModel(a.title), opts...)

	workDone := make(chan error, 1)
	go func() {
		err := work(ctx, func(e Entry) { program.Send(entryMsg(e)) })
		workDone <- err
		program.Send(doneMsg{err: err})
	}()

	if a.themeFile != "" {
		w, err := styles.WatchTheme(a.themeFile, func(p *styles.Palette, err error) {
			program.Send(themeMsg{palette: p, err: err})
		})
		if err != nil {
			a.logger.Warn("theme reload disabled", "error", err)
		} else {
			defer w.Stop()
		}
	}

	// Set up signal handling so a terminated process still restores the terminal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			program.Send(tea.Quit())
		case <-ctx.Done():
		}
	}()

	final, runErr := program.Run()
	cancel()
	workErr := <-workDone

	if m, ok := final.(StreamModel); ok {
		a.entries = m.Entries()
		if m.Canceled() && !m.done {
			return ErrCanceled
		}
	}
	if runErr != nil {
		return runErr
	}
	return workErr
}
