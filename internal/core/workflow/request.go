package workflow

import (
	"errors"
	"fmt"
)

// ErrRequestInFlight is returned when a second call of the same kind is
// started while the first one is still pending.
var ErrRequestInFlight = errors.New("request already in flight")

// ErrNoRequestInFlight is returned when a resolution arrives for an idle lifecycle.
var ErrNoRequestInFlight = errors.New("no request in flight")

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseInFlight  Phase = "in_flight"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// Request is the lifecycle of one kind of boundary call.
type Request struct {
	Phase Phase
	// Epoch is the State epoch the current or last call was issued under.
	Epoch uint64
}

func (r Request) InFlight() bool {
	return r.Phase == PhaseInFlight
}

func (r Request) begin(epoch uint64) (Request, error) {
	if err := r.transition(PhaseInFlight); err != nil {
		return r, err
	}
	return Request{Phase: PhaseInFlight, Epoch: epoch}, nil
}

func (r Request) finish(failed bool) (Request, error) {
	to := PhaseSucceeded
	if failed {
		to = PhaseFailed
	}
	if err := r.transition(to); err != nil {
		return r, err
	}
	return Request{Phase: to, Epoch: r.Epoch}, nil
}

func (r Request) transition(to Phase) error {
	from := r.Phase
	if from == "" {
		from = PhaseIdle
	}
	if !isValidTransition(from, to) {
		switch {
		case from == PhaseInFlight && to == PhaseInFlight:
			return ErrRequestInFlight
		case from != PhaseInFlight:
			return ErrNoRequestInFlight
		default:
			return fmt.Errorf("invalid request transition: %s -> %s", from, to)
		}
	}
	return nil
}

// isValidTransition enforces idle -> in_flight -> succeeded|failed, with
// resolved requests allowed to start again.
func isValidTransition(from, to Phase) bool {
	switch from {
	case PhaseIdle, PhaseSucceeded, PhaseFailed:
		return to == PhaseInFlight
	case PhaseInFlight:
		return to == PhaseSucceeded || to == PhaseFailed
	default:
		return false
	}
}
