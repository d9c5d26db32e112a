package workflow

import (
	"context"
	"fmt"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// Boundary is the pair of remote operations the workflow depends on.
type Boundary interface {
	ExtractExperiments(ctx context.Context, file domain.SourceFile) ([]domain.Experiment, error)
	GenerateReport(ctx context.Context, experimentText string) (domain.Report, error)
}

// Run issues the boundary call described by eff and returns the event that
// resolves it. A panicking boundary resolves as a transport failure so the
// in-flight flag is always released. Run returns nil for a nil effect.
func Run(ctx context.Context, boundary Boundary, eff Effect) (ev Event) {
	switch eff := eff.(type) {
	case ExtractCall:
		defer func() {
			if r := recover(); r != nil {
				ev = ExtractResolved{Epoch: eff.Epoch, Err: panicError("extract experiments", r)}
			}
		}()
		experiments, err := boundary.ExtractExperiments(ctx, eff.File)
		return ExtractResolved{Epoch: eff.Epoch, Experiments: experiments, Err: err}

	case GenerateCall:
		defer func() {
			if r := recover(); r != nil {
				ev = GenerateResolved{Epoch: eff.Epoch, ExperimentID: eff.ExperimentID, Err: panicError("generate report", r)}
			}
		}()
		report, err := boundary.GenerateReport(ctx, eff.Text)
		return GenerateResolved{Epoch: eff.Epoch, ExperimentID: eff.ExperimentID, Report: report, Err: err}

	default:
		return nil
	}
}

func panicError(operation string, r any) error {
	return domain.WrapError(domain.ErrTransportFailure, operation, fmt.Errorf("panic: %v", r))
}
