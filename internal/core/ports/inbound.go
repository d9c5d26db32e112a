package ports

import (
	"context"
	"io"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// ExperimentExtractor is the inbound contract for turning an uploaded lab
// manual into its list of experiments.
type ExperimentExtractor interface {
	Extract(ctx context.Context, filename string, body io.Reader) ([]domain.Experiment, error)
}

// ReportGenerator is the inbound contract for writing a report for one
// experiment's text.
type ReportGenerator interface {
	Generate(ctx context.Context, experimentText string) (domain.Report, error)
}
