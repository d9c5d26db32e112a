package workflow

import "github.com/kirillkom/lab-assistant/internal/core/domain"

// Event is an input to Reduce.
type Event interface {
	workflowEvent()
}

// FileSelected replaces the chosen document. A nil File deselects.
type FileSelected struct {
	File *domain.SourceFile
}

type UploadRequested struct{}

// ExtractResolved carries the outcome of an ExtractCall.
type ExtractResolved struct {
	Epoch       uint64
	Experiments []domain.Experiment
	Err         error
}

type ItemSelected struct {
	ID domain.ExperimentID
}

type GenerateRequested struct{}

// GenerateResolved carries the outcome of a GenerateCall.
type GenerateResolved struct {
	Epoch        uint64
	ExperimentID domain.ExperimentID
	Report       domain.Report
	Err          error
}

func (FileSelected) workflowEvent()      {}
func (UploadRequested) workflowEvent()   {}
func (ExtractResolved) workflowEvent()   {}
func (ItemSelected) workflowEvent()      {}
func (GenerateRequested) workflowEvent() {}
func (GenerateResolved) workflowEvent()  {}

// Effect describes a boundary call the caller must issue. Reduce returns a
// nil Effect when no call is needed.
type Effect interface {
	workflowEffect()
}

type ExtractCall struct {
	Epoch uint64
	File  domain.SourceFile
}

type GenerateCall struct {
	Epoch        uint64
	ExperimentID domain.ExperimentID
	Text         string
}

func (ExtractCall) workflowEffect()  {}
func (GenerateCall) workflowEffect() {}
