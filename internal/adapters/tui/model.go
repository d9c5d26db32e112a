// Package tui is the interactive terminal client: pick a lab manual, extract
// its experiments, choose one and read the generated report.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/workflow"
)

// AllowedTypes are the document extensions offered by the file picker.
var AllowedTypes = []string{".pdf", ".docx", ".txt", ".xlsx", ".html", ".htm"}

type pane int

const (
	panePicker pane = iota
	paneList
	paneReport
)

// fileChosenMsg is emitted when a document path has been picked.
type fileChosenMsg struct {
	path string
}

// resolvedMsg carries the event that resolves a boundary call.
type resolvedMsg struct {
	event workflow.Event
}

type Option func(*Model)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStartDir sets the directory the file picker opens in.
func WithStartDir(dir string) Option {
	return func(m *Model) {
		if dir != "" {
			m.picker.CurrentDirectory = dir
		}
	}
}

// WithInitialFile selects path on start, skipping the picker.
func WithInitialFile(path string) Option {
	return func(m *Model) { m.initialFile = path }
}

// WithContext bounds every boundary call issued by the model.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithServiceLabel is shown under the title, typically the API base URL.
func WithServiceLabel(label string) Option {
	return func(m *Model) { m.serviceLabel = label }
}

// Model is the Bubble Tea model. It owns the workflow state and feeds every
// user action and boundary result through workflow.Reduce.
type Model struct {
	boundary workflow.Boundary
	state    workflow.State
	logger   *slog.Logger
	ctx      context.Context

	cancelUpload   context.CancelFunc
	cancelGenerate context.CancelFunc

	pane     pane
	picker   filepicker.Model
	list     list.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	initialFile  string
	serviceLabel string
	notice       string

	width  int
	height int
}

func New(boundary workflow.Boundary, opts ...Option) Model {
	fp := filepicker.New()
	fp.AllowedTypes = AllowedTypes
	fp.AutoHeight = false
	fp.Height = 12
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}

	delegate := list.NewDefaultDelegate()
	experiments := list.New(nil, delegate, 80, 16)
	experiments.Title = "Experiments"
	experiments.SetShowHelp(false)
	experiments.SetFilteringEnabled(false)
	experiments.SetShowStatusBar(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	m := Model{
		boundary: boundary,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:      context.Background(),
		pane:     panePicker,
		picker:   fp,
		list:     experiments,
		viewport: viewport.New(80, 16),
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
		width:    80,
		height:   30,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// State returns the current workflow state.
func (m Model) State() workflow.State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.picker.Init()}
	if m.initialFile != "" {
		path := m.initialFile
		cmds = append(cmds, func() tea.Msg { return fileChosenMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case fileChosenMsg:
		return m.chooseFile(msg.path)

	case resolvedMsg:
		return m.resolve(msg.event)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.cancelPending()
			return m, tea.Quit
		}
		if m.pane == panePicker {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	return m.updatePicker(msg)
}

func (m Model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" && m.state.File != nil {
		m.pane = paneList
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if selected, path := m.picker.DidSelectFile(msg); selected {
		return m, tea.Batch(cmd, func() tea.Msg { return fileChosenMsg{path: path} })
	}
	if disabled, path := m.picker.DidSelectDisabledFile(msg); disabled {
		m.notice = fmt.Sprintf("Unsupported file type: %s", path)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.extract):
		if !m.state.CanUpload() {
			return m, nil
		}
		return m.dispatch(workflow.UploadRequested{})

	case key.Matches(msg, m.keys.generate):
		if m.state.GenerateInProgress() {
			return m, nil
		}
		return m.dispatch(workflow.GenerateRequested{})

	case key.Matches(msg, m.keys.openFile):
		m.pane = panePicker
		return m, nil

	case key.Matches(msg, m.keys.toggle):
		switch {
		case m.pane == paneList && m.state.Report != nil:
			m.pane = paneReport
		case m.pane == paneReport:
			m.pane = paneList
		}
		return m, nil

	case key.Matches(msg, m.keys.cancel):
		m.cancelPending()
		return m, nil
	}

	if m.pane == paneReport {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	next, selectCmd := m.syncSelection()
	return next, tea.Batch(cmd, selectCmd)
}

func (m Model) chooseFile(path string) (tea.Model, tea.Cmd) {
	file, err := domain.FileFromPath(path)
	if err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.notice = ""
	m.pane = paneList
	return m.dispatch(workflow.FileSelected{File: &file})
}

// syncSelection reports a list cursor move to the workflow.
func (m Model) syncSelection() (Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(experimentItem)
	if !ok || m.state.Selection.Is(item.experiment.ID) {
		return m, nil
	}
	return m.dispatch(workflow.ItemSelected{ID: item.experiment.ID})
}

func (m Model) resolve(ev workflow.Event) (tea.Model, tea.Cmd) {
	switch ev.(type) {
	case workflow.ExtractResolved:
		m.cancelUpload = nil
	case workflow.GenerateResolved:
		m.cancelGenerate = nil
	}
	return m.dispatch(ev)
}

func (m Model) dispatch(ev workflow.Event) (Model, tea.Cmd) {
	next, eff, err := workflow.Reduce(m.state, ev)
	m.state = next

	attrs := []any{
		"event", fmt.Sprintf("%T", ev),
		"upload", string(next.Upload.Phase),
		"generate", string(next.Generate.Phase),
		"experiments", len(next.Experiments),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	m.logger.Debug("workflow_transition", attrs...)

	switch ev.(type) {
	case workflow.FileSelected, workflow.ExtractResolved:
		m.syncList()
	case workflow.GenerateResolved:
		if err == nil && next.Report != nil {
			m.viewport.SetContent(renderReport(*next.Report, m.viewport.Width))
			m.viewport.GotoTop()
			m.pane = paneReport
		}
	case workflow.ItemSelected:
		if next.Report == nil && m.pane == paneReport {
			m.pane = paneList
		}
	}

	if eff == nil {
		return m, nil
	}
	return m.start(eff)
}

func (m Model) start(eff workflow.Effect) (Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctx)
	switch eff.(type) {
	case workflow.ExtractCall:
		m.cancelUpload = cancel
	case workflow.GenerateCall:
		m.cancelGenerate = cancel
	}

	boundary, logger := m.boundary, m.logger
	call := func() tea.Msg {
		defer cancel()
		start := time.Now()
		ev := workflow.Run(ctx, boundary, eff)
		logger.Debug("boundary_call",
			"effect", fmt.Sprintf("%T", eff),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
		return resolvedMsg{event: ev}
	}
	return m, tea.Batch(call, m.spinner.Tick)
}

func (m *Model) cancelPending() {
	if m.cancelUpload != nil {
		m.cancelUpload()
	}
	if m.cancelGenerate != nil {
		m.cancelGenerate()
	}
}

func (m *Model) syncList() {
	m.list.SetItems(experimentItems(m.state.Experiments))
	for i, e := range m.state.Experiments {
		if m.state.Selection.Is(e.ID) {
			m.list.Select(i)
			break
		}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	inner := max(width-4, 20)
	body := max(height-12, 5)

	m.picker.Height = body
	m.list.SetSize(inner, body)
	m.viewport.Width = inner
	m.viewport.Height = body
	m.help.Width = width
	if m.state.Report != nil {
		m.viewport.SetContent(renderReport(*m.state.Report, inner))
	}
}

func (m Model) busy() bool {
	return m.state.UploadInProgress() || m.state.GenerateInProgress()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Lab Manual Assistant"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(m.subtitle()))
	b.WriteString("\n\n")

	switch m.pane {
	case panePicker:
		b.WriteString(paneStyle.Render("Select a lab manual (" + strings.Join(AllowedTypes, " ") + ")\n\n" + m.picker.View()))
	case paneList:
		b.WriteString(paneStyle.Render(m.listView()))
	case paneReport:
		b.WriteString(paneStyle.Render(m.viewport.View()))
	}
	b.WriteString("\n")

	if status := m.statusLine(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	if text := m.errorText(); text != "" {
		b.WriteString(errorBoxStyle.Render(text))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) subtitle() string {
	parts := make([]string, 0, 2)
	if m.state.File != nil {
		parts = append(parts, "file: "+m.state.File.Name)
	} else {
		parts = append(parts, "no file selected")
	}
	if m.serviceLabel != "" {
		parts = append(parts, "service: "+m.serviceLabel)
	}
	return strings.Join(parts, "  |  ")
}

func (m Model) listView() string {
	if len(m.state.Experiments) > 0 {
		return m.list.View()
	}
	if m.state.File == nil {
		return "Press o to choose a lab manual."
	}
	return fmt.Sprintf("Press u to extract experiments from %s.", m.state.File.Name)
}

func (m Model) statusLine() string {
	switch {
	case m.state.UploadInProgress():
		return m.spinner.View() + " Extracting experiments..."
	case m.state.GenerateInProgress():
		return m.spinner.View() + " Generating report..."
	default:
		return ""
	}
}

func (m Model) errorText() string {
	if msg := m.state.ErrorMessage(); msg != "" {
		return msg
	}
	return m.notice
}

func renderReport(r domain.Report, width int) string {
	body := lipgloss.NewStyle().Width(max(width-2, 10))
	var b strings.Builder
	for _, section := range []struct{ title, text string }{
		{"Procedure", r.Procedure},
		{"Theory", r.Theory},
		{"Safety", r.Safety},
	} {
		b.WriteString(sectionStyle.Render(section.title))
		b.WriteString("\n")
		text := strings.TrimSpace(section.text)
		if text == "" {
			text = subtleStyle.Render("(empty)")
		}
		b.WriteString(body.Render(text))
		b.WriteString("\n")
	}
	return b.String()
}
