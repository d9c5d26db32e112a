package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/workflow"
)

type boundaryFake struct {
	experiments []domain.Experiment
	extractErr  error
	report      domain.Report
	generateErr error
	block       bool

	extractCalls  int
	generateCalls int
	lastText      string
}

func (f *boundaryFake) ExtractExperiments(ctx context.Context, _ domain.SourceFile) ([]domain.Experiment, error) {
	f.extractCalls++
	if f.block {
		<-ctx.Done()
		return nil, domain.WrapError(domain.ErrTransportFailure, "extract experiments", ctx.Err())
	}
	return f.experiments, f.extractErr
}

func (f *boundaryFake) GenerateReport(_ context.Context, text string) (domain.Report, error) {
	f.generateCalls++
	f.lastText = text
	return f.report, f.generateErr
}

func twoExperiments() []domain.Experiment {
	return []domain.Experiment{
		{ID: domain.NewExperimentID(1), Title: "Experiment 1", Preview: "Full A", Text: "Full A"},
		{ID: domain.NewExperimentID(2), Title: "Experiment 2", Preview: "Full B", Text: "Full B text"},
	}
}

func writeManual(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("Experiment 1\nFull A\nExperiment 2\nFull B text"), 0o600); err != nil {
		t.Fatalf("write manual: %v", err)
	}
	return path
}

func press(t *testing.T, m Model, keys string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch keys {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	return update(t, m, msg)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

// resolution runs cmd, unpacking batches, and returns the boundary result.
func resolution(t *testing.T, cmd tea.Cmd) resolvedMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	pending := []tea.Cmd{cmd}
	for len(pending) > 0 {
		c := pending[0]
		pending = pending[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case resolvedMsg:
			return msg
		case tea.BatchMsg:
			pending = append(pending, msg...)
		}
	}
	t.Fatalf("command produced no boundary result")
	return resolvedMsg{}
}

func newTestModel(t *testing.T, b workflow.Boundary) Model {
	t.Helper()
	m := New(b, WithStartDir(t.TempDir()))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestExtractKeyIgnoredWithoutFile(t *testing.T) {
	fake := &boundaryFake{}
	m := newTestModel(t, fake)
	m.pane = paneList

	m, cmd := press(t, m, "u")
	if cmd != nil {
		t.Fatalf("expected no command without a file")
	}
	if fake.extractCalls != 0 || m.State().ErrorMessage() != "" {
		t.Fatalf("unexpected state %+v", m.State())
	}
}

func TestFullFlowThroughTheModel(t *testing.T) {
	fake := &boundaryFake{
		experiments: twoExperiments(),
		report:      domain.Report{Procedure: "Step one", Theory: "Because", Safety: "Wear goggles"},
	}
	m := newTestModel(t, fake)

	m, _ = update(t, m, fileChosenMsg{path: writeManual(t, "manual.txt")})
	if m.pane != paneList || m.State().File == nil || m.State().File.Name != "manual.txt" {
		t.Fatalf("file not selected: pane=%d state=%+v", m.pane, m.State())
	}

	m, cmd := press(t, m, "u")
	if !m.State().UploadInProgress() {
		t.Fatalf("upload flag must be set as soon as the key is handled")
	}
	if !strings.Contains(m.View(), "Extracting experiments...") {
		t.Fatalf("expected extracting status in view")
	}
	if _, again := press(t, m, "u"); again != nil {
		t.Fatalf("extract key must be ignored while in flight")
	}

	m, _ = update(t, m, resolution(t, cmd))
	st := m.State()
	if st.UploadInProgress() || len(st.Experiments) != 2 || !st.Selection.Is(domain.NewExperimentID(1)) {
		t.Fatalf("unexpected state after extract %+v", st)
	}
	if !strings.Contains(m.View(), "Experiment 2") {
		t.Fatalf("expected experiments listed")
	}

	m, _ = press(t, m, "down")
	if !m.State().Selection.Is(domain.NewExperimentID(2)) {
		t.Fatalf("cursor move must select experiment 2, got %+v", m.State().Selection)
	}

	m, cmd = press(t, m, "g")
	if !m.State().GenerateInProgress() {
		t.Fatalf("generate flag must be set")
	}
	m, _ = update(t, m, resolution(t, cmd))
	if fake.lastText != "Full B text" {
		t.Fatalf("expected selected text sent, got %q", fake.lastText)
	}
	if m.pane != paneReport {
		t.Fatalf("expected report pane, got %d", m.pane)
	}
	view := m.View()
	for _, want := range []string{"Procedure", "Theory", "Safety", "Wear goggles"} {
		if !strings.Contains(view, want) {
			t.Fatalf("report view missing %q:\n%s", want, view)
		}
	}

	m, _ = press(t, m, "tab")
	if m.pane != paneList {
		t.Fatalf("tab must return to the list")
	}
}

func TestServiceDetailShownInErrorBox(t *testing.T) {
	fake := &boundaryFake{
		extractErr: &domain.BoundaryError{Operation: "extract experiments", StatusCode: 400, Detail: "Unsupported file type"},
	}
	m := newTestModel(t, fake)
	m, _ = update(t, m, fileChosenMsg{path: writeManual(t, "notes.txt")})

	m, cmd := press(t, m, "u")
	m, _ = update(t, m, resolution(t, cmd))

	if got := m.State().ErrorMessage(); got != "Unsupported file type" {
		t.Fatalf("unexpected message %q", got)
	}
	if !strings.Contains(m.View(), "Unsupported file type") {
		t.Fatalf("expected detail rendered")
	}
}

func TestGenerateWithoutSelectionShowsMessage(t *testing.T) {
	fake := &boundaryFake{}
	m := newTestModel(t, fake)
	m, _ = update(t, m, fileChosenMsg{path: writeManual(t, "manual.txt")})

	m, cmd := press(t, m, "g")
	if cmd != nil || fake.generateCalls != 0 {
		t.Fatalf("boundary must not be called without a selection")
	}
	if got := m.State().ErrorMessage(); got != workflow.MsgNoItemSelected {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestEscCancelsPendingUpload(t *testing.T) {
	fake := &boundaryFake{block: true}
	m := newTestModel(t, fake)
	m, _ = update(t, m, fileChosenMsg{path: writeManual(t, "manual.txt")})

	m, cmd := press(t, m, "u")
	m, _ = press(t, m, "esc")
	m, _ = update(t, m, resolution(t, cmd))

	st := m.State()
	if st.UploadInProgress() {
		t.Fatalf("upload flag leaked after cancel")
	}
	if st.ErrorMessage() != workflow.MsgExtractFallback {
		t.Fatalf("unexpected message %q", st.ErrorMessage())
	}
}

func TestResultForPreviousFileIsDropped(t *testing.T) {
	fake := &boundaryFake{experiments: twoExperiments()}
	m := newTestModel(t, fake)
	m, _ = update(t, m, fileChosenMsg{path: writeManual(t, "first.txt")})

	m, cmd := press(t, m, "u")
	m, _ = update(t, m, fileChosenMsg{path: writeManual(t, "second.txt")})
	m, _ = update(t, m, resolution(t, cmd))

	st := m.State()
	if st.File == nil || st.File.Name != "second.txt" {
		t.Fatalf("unexpected file %+v", st.File)
	}
	if len(st.Experiments) != 0 {
		t.Fatalf("stale experiments applied: %+v", st.Experiments)
	}
}

func TestMissingFileBecomesNotice(t *testing.T) {
	m := newTestModel(t, &boundaryFake{})
	m, _ = update(t, m, fileChosenMsg{path: filepath.Join(t.TempDir(), "missing.pdf")})

	if m.State().File != nil {
		t.Fatalf("missing file must not be selected")
	}
	if !strings.Contains(m.View(), "missing.pdf") {
		t.Fatalf("expected notice in view")
	}
}
