package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// Reduce applies one event to s and returns the next state, the boundary
// call to issue (nil when none) and the failure the event produced, if any.
//
// Precondition failures are recorded in the returned state as well, except
// for ItemSelected with an unknown id, which leaves state untouched.
// ErrRequestInFlight is returned, with s unchanged, when a call of the same
// kind is already pending.
func Reduce(s State, ev Event) (State, Effect, error) {
	switch ev := ev.(type) {
	case FileSelected:
		return selectFile(s, ev), nil, nil
	case UploadRequested:
		return requestUpload(s)
	case ExtractResolved:
		return resolveExtract(s, ev)
	case ItemSelected:
		return selectItem(s, ev)
	case GenerateRequested:
		return requestGenerate(s)
	case GenerateResolved:
		return resolveGenerate(s, ev)
	default:
		return s, nil, fmt.Errorf("unknown workflow event %T", ev)
	}
}

func selectFile(s State, ev FileSelected) State {
	next := s.clone()
	next.File = nil
	if ev.File != nil {
		file := *ev.File
		next.File = &file
	}
	next.Experiments = nil
	next.Selection = NoSelection()
	next.Report = nil
	next.Failure = nil
	next.Epoch++
	return next
}

func requestUpload(s State) (State, Effect, error) {
	if s.File == nil {
		return withFailure(s, precondition(domain.ErrNoFileSelected, MsgNoFileSelected))
	}
	upload, err := s.Upload.begin(s.Epoch)
	if err != nil {
		return s, nil, err
	}

	next := s.clone()
	next.Upload = upload
	next.Failure = nil
	next.Report = nil
	return next, ExtractCall{Epoch: s.Epoch, File: *s.File}, nil
}

func resolveExtract(s State, ev ExtractResolved) (State, Effect, error) {
	upload, err := s.Upload.finish(ev.Err != nil)
	if err != nil {
		return s, nil, err
	}
	next := s.clone()
	next.Upload = upload

	if ev.Epoch != s.Epoch {
		// The file changed while the call was pending.
		return next, nil, nil
	}
	if ev.Err != nil {
		f := boundaryFailure(ev.Err, MsgExtractFallback)
		next.Failure = f
		return next, nil, f
	}

	next.Experiments = append([]domain.Experiment{}, ev.Experiments...)
	next.Selection = NoSelection()
	if len(next.Experiments) > 0 {
		next.Selection = Select(next.Experiments[0].ID)
	}
	return next, nil, nil
}

func selectItem(s State, ev ItemSelected) (State, Effect, error) {
	if _, ok := domain.FindExperiment(s.Experiments, ev.ID); !ok {
		return s, nil, precondition(domain.ErrInvalidSelection, MsgInvalidSelection)
	}
	if s.Selection.Is(ev.ID) {
		return s, nil, nil
	}
	next := s.clone()
	next.Selection = Select(ev.ID)
	next.Report = nil
	return next, nil, nil
}

func requestGenerate(s State) (State, Effect, error) {
	if !s.Selection.Valid {
		return withFailure(s, precondition(domain.ErrNoItemSelected, MsgNoItemSelected))
	}
	exp, ok := s.SelectedExperiment()
	if !ok {
		return withFailure(s, precondition(domain.ErrInvalidSelection, MsgInvalidSelection))
	}
	generate, err := s.Generate.begin(s.Epoch)
	if err != nil {
		return s, nil, err
	}

	next := s.clone()
	next.Generate = generate
	next.Failure = nil
	return next, GenerateCall{Epoch: s.Epoch, ExperimentID: exp.ID, Text: exp.Text}, nil
}

func resolveGenerate(s State, ev GenerateResolved) (State, Effect, error) {
	generate, err := s.Generate.finish(ev.Err != nil)
	if err != nil {
		return s, nil, err
	}
	next := s.clone()
	next.Generate = generate

	if ev.Epoch != s.Epoch || !s.Selection.Is(ev.ExperimentID) {
		// Produced for a file or selection that is no longer current.
		return next, nil, nil
	}
	if ev.Err != nil {
		f := boundaryFailure(ev.Err, MsgGenerateFallback)
		next.Failure = f
		return next, nil, f
	}

	report := ev.Report
	next.Report = &report
	return next, nil, nil
}

func withFailure(s State, f *Failure) (State, Effect, error) {
	next := s.clone()
	next.Failure = f
	return next, nil, f
}

func precondition(kind error, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// boundaryFailure normalises a boundary error into the displayed message:
// the service-supplied detail when there is one, the fallback otherwise.
func boundaryFailure(err error, fallback string) *Failure {
	kind := domain.ErrTransportFailure
	message := fallback

	var rejected *domain.BoundaryError
	if errors.As(err, &rejected) {
		kind = domain.ErrBoundaryRejected
		if detail := strings.TrimSpace(rejected.Detail); detail != "" {
			message = detail
		}
	} else if domain.IsKind(err, domain.ErrBoundaryRejected) {
		kind = domain.ErrBoundaryRejected
	}

	return &Failure{Kind: kind, Message: message, Cause: err}
}
