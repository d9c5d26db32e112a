package workflow

import (
	"errors"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// User-facing texts for every failure the workflow can surface.
const (
	MsgNoFileSelected   = "Please select a file first."
	MsgNoItemSelected   = "Please select an experiment."
	MsgInvalidSelection = "Invalid experiment selected."
	MsgExtractFallback  = "Failed to extract experiments"
	MsgGenerateFallback = "Failed to generate report"
)

// Selection is the id of the active experiment, or none.
type Selection struct {
	ID    domain.ExperimentID
	Valid bool
}

func NoSelection() Selection { return Selection{} }

func Select(id domain.ExperimentID) Selection {
	return Selection{ID: id, Valid: true}
}

func (s Selection) Is(id domain.ExperimentID) bool {
	return s.Valid && s.ID == id
}

// Failure is the single message shown to the user. Kind is one of the
// domain sentinels and is what callers branch on; Message is display text.
type Failure struct {
	Kind    error
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	return f.Message
}

func (f *Failure) Unwrap() []error {
	if f == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if f.Kind != nil {
		out = append(out, f.Kind)
	}
	if f.Cause != nil {
		out = append(out, f.Cause)
	}
	return out
}

// State is the whole client workflow. Values are treated as immutable:
// Reduce returns a new State and never mutates the one it was given.
type State struct {
	File        *domain.SourceFile
	Experiments []domain.Experiment
	Selection   Selection
	Report      *domain.Report
	Upload      Request
	Generate    Request
	Failure     *Failure

	// Epoch increases on every file change. Boundary calls carry the epoch
	// they were issued under so late responses for an old file are ignored.
	Epoch uint64
}

func (s State) UploadInProgress() bool   { return s.Upload.InFlight() }
func (s State) GenerateInProgress() bool { return s.Generate.InFlight() }

// ErrorMessage returns the displayed error, or "" when there is none.
func (s State) ErrorMessage() string {
	if s.Failure == nil {
		return ""
	}
	return s.Failure.Message
}

// SelectedExperiment resolves the selection against the current list.
func (s State) SelectedExperiment() (domain.Experiment, bool) {
	if !s.Selection.Valid {
		return domain.Experiment{}, false
	}
	return domain.FindExperiment(s.Experiments, s.Selection.ID)
}

// CanUpload mirrors the enabled state of the extract control.
func (s State) CanUpload() bool {
	return s.File != nil && !s.Upload.InFlight()
}

// CanGenerate mirrors the enabled state of the generate control.
func (s State) CanGenerate() bool {
	return s.Selection.Valid && !s.Generate.InFlight()
}

func (s State) clone() State {
	out := s
	if s.Experiments != nil {
		out.Experiments = append([]domain.Experiment(nil), s.Experiments...)
	}
	return out
}

// FailureKind returns the sentinel kind carried by err, if any.
func FailureKind(err error) error {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return nil
}
