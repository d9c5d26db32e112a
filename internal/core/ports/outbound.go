package ports

import (
	"context"
	"io"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// ObjectStorage archives raw uploads.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor turns the bytes of one uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// ExperimentSplitter cuts manual text into experiment sections.
type ExperimentSplitter interface {
	Split(text string) []domain.Experiment
}

// ReportWriter asks a language model for the procedure, theory and safety
// sections of an experiment.
type ReportWriter interface {
	WriteReport(ctx context.Context, experimentText string) (domain.Report, error)
}

// ExtractionObserver records extraction outcomes.
type ExtractionObserver interface {
	ObserveExtraction(format string, experiments int, err error)
}

// GenerationObserver records report generation outcomes.
type GenerationObserver interface {
	ObserveGeneration(err error)
}
