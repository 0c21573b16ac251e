package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/xmlload/internal/logging"
	"github.com/vvka-141/xmlload/pkg/xmlload"
)

// TableStartedMsg marks the start of a table load.
type TableStartedMsg struct {
	Table string
}

// ProgressMsg carries the counters after a flushed batch.
type ProgressMsg struct {
	Progress xmlload.LoadProgress
}

// TableFinishedMsg marks a table as completely loaded.
type TableFinishedMsg struct {
	Progress xmlload.LoadProgress
}

// FinishedMsg ends the view. Err is nil on success.
type FinishedMsg struct {
	Err error
}

type tableState int

const (
	tablePending tableState = iota
	tableLoading
	tableDone
	tableFailed
)

// ProgressModel renders one line per table with live counters.
type ProgressModel struct {
	title    string
	order    []string
	state    map[string]tableState
	progress map[string]xmlload.LoadProgress
	current  string
	spinner  spinner.Model
	err      error
	finished bool
}

// NewProgressModel creates a model listing tables in load order.
func NewProgressModel(title string, tables []string) ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	state := make(map[string]tableState, len(tables))
	for _, t := range tables {
		state[t] = tablePending
	}

	return ProgressModel{
		title:    title,
		order:    append([]string(nil), tables...),
		state:    state,
		progress: make(map[string]xmlload.LoadProgress, len(tables)),
		spinner:  s,
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TableStartedMsg:
		m.track(msg.Table)
		m.state[msg.Table] = tableLoading
		m.current = msg.Table
		return m, nil

	case ProgressMsg:
		m.track(msg.Progress.Table)
		m.progress[msg.Progress.Table] = msg.Progress
		return m, nil

	case TableFinishedMsg:
		m.track(msg.Progress.Table)
		m.progress[msg.Progress.Table] = msg.Progress
		m.state[msg.Progress.Table] = tableDone
		if m.current == msg.Progress.Table {
			m.current = ""
		}
		return m, nil

	case FinishedMsg:
		m.err = msg.Err
		if msg.Err != nil && m.current != "" {
			m.state[m.current] = tableFailed
		}
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// track appends tables that were not announced up front.
func (m *ProgressModel) track(table string) {
	if _, ok := m.state[table]; !ok {
		m.state[table] = tablePending
		m.order = append(m.order, table)
	}
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	for _, table := range m.order {
		b.WriteString(m.line(table))
		b.WriteString("\n")
	}

	if m.finished && m.err != nil {
		b.WriteString(ErrorStyle.Render(SymbolCross + " " + firstLine(m.err.Error())))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ProgressModel) line(table string) string {
	p, seen := m.progress[table]

	var symbol string
	switch m.state[table] {
	case tableLoading:
		symbol = m.spinner.View()
	case tableDone:
		symbol = SuccessStyle.Render(SymbolCheck)
	case tableFailed:
		symbol = ErrorStyle.Render(SymbolCross)
	default:
		return fmt.Sprintf("%s %s %s", MutedStyle.Render(SymbolPending), TableNameStyle.Render(table), MutedStyle.Render("waiting"))
	}

	if !seen {
		return fmt.Sprintf("%s %s %s", symbol, TableNameStyle.Render(table), MutedStyle.Render("starting"))
	}

	counts := fmt.Sprintf("%d processed, %d inserted, %d skipped", p.RecordsProcessed, p.RecordsInserted, p.Skipped())
	timing := fmt.Sprintf("%s, %s", p.Elapsed.Round(time.Second), logging.FormatRate(p.RecordsProcessed, p.Elapsed))
	return fmt.Sprintf("%s %s %s %s", symbol, TableNameStyle.Render(table), CountStyle.Render(counts), MutedStyle.Render("("+timing+")"))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// ProgressView runs a ProgressModel on its own goroutine and feeds it
// load events. It implements xmlload.ProgressReporter. Rendering starts
// with the first table, so prompts shown before loading are not drawn over.
type ProgressView struct {
	program  *tea.Program
	once     sync.Once
	started  atomic.Bool
	finished atomic.Bool
	done     chan struct{}
}

// NewProgressView creates a view drawing on out. Keyboard input is not
// read, so Ctrl+C reaches the process signal handler.
func NewProgressView(out io.Writer, title string, tables []string) *ProgressView {
	program := tea.NewProgram(
		NewProgressModel(title, tables),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	return &ProgressView{program: program, done: make(chan struct{})}
}

func (v *ProgressView) start() {
	v.once.Do(func() {
		v.started.Store(true)
		go func() {
			defer close(v.done)
			_, _ = v.program.Run()
		}()
	})
}

// TableStarted marks table as loading.
func (v *ProgressView) TableStarted(table string) {
	v.start()
	v.program.Send(TableStartedMsg{Table: table})
}

// Report implements xmlload.ProgressReporter.
func (v *ProgressView) Report(progress xmlload.LoadProgress) {
	v.start()
	v.program.Send(ProgressMsg{Progress: progress})
}

// TableFinished marks a table as loaded.
func (v *ProgressView) TableFinished(progress xmlload.LoadProgress) {
	v.program.Send(TableFinishedMsg{Progress: progress})
}

// Finish renders the final state and waits for the renderer to exit.
// It returns at once if nothing was rendered.
func (v *ProgressView) Finish(err error) {
	if !v.started.Load() {
		return
	}
	v.program.Send(FinishedMsg{Err: err})
	<-v.done
	v.finished.Store(true)
}

// rendering reports whether the program currently owns the terminal.
func (v *ProgressView) rendering() bool {
	return v.started.Load() && !v.finished.Load()
}

// Logger returns a logger that prints above the view while it renders and
// uses fallback before and after. Verbose lines are dropped while rendering.
func (v *ProgressView) Logger(fallback xmlload.Logger) xmlload.Logger {
	return &viewLogger{view: v, fallback: fallback}
}

type viewLogger struct {
	view     *ProgressView
	fallback xmlload.Logger
}

func (l *viewLogger) Verbose(format string, args ...interface{}) {
	if !l.view.rendering() {
		l.fallback.Verbose(format, args...)
	}
}

func (l *viewLogger) Info(format string, args ...interface{}) {
	if l.view.rendering() {
		l.view.program.Println(fmt.Sprintf(format, args...))
		return
	}
	l.fallback.Info(format, args...)
}

func (l *viewLogger) Error(format string, args ...interface{}) {
	if l.view.rendering() {
		l.view.program.Println(ErrorStyle.Render(fmt.Sprintf(format, args...)))
		return
	}
	l.fallback.Error(format, args...)
}

var (
	_ xmlload.ProgressReporter = (*ProgressView)(nil)
	_ xmlload.Logger           = (*viewLogger)(nil)
)
