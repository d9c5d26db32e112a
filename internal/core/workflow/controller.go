package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

// Controller owns one workflow State and drives it for callers that prefer
// blocking methods over dispatching events themselves. Transitions are
// serialised; the lock is never held across a boundary call, so an upload
// and a generation can be pending at the same time.
type Controller struct {
	boundary Boundary
	logger   *slog.Logger

	mu             sync.Mutex
	state          State
	cancelUpload   context.CancelFunc
	cancelGenerate context.CancelFunc
}

func NewController(boundary Boundary, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		boundary: boundary,
		logger:   logger,
	}
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) SelectFile(file *domain.SourceFile) {
	_, _ = c.dispatch(FileSelected{File: file})
}

func (c *Controller) SelectItem(id domain.ExperimentID) error {
	_, err := c.dispatch(ItemSelected{ID: id})
	return err
}

// Upload submits the selected file for extraction and blocks until the
// call resolves. The returned error is the displayed Failure, if any.
func (c *Controller) Upload(ctx context.Context) error {
	eff, callCtx, err := c.begin(ctx, UploadRequested{}, &c.cancelUpload)
	if err != nil || eff == nil {
		return err
	}
	return c.perform(callCtx, eff, &c.cancelUpload)
}

// Generate requests a report for the selected experiment and blocks until
// the call resolves.
func (c *Controller) Generate(ctx context.Context) error {
	eff, callCtx, err := c.begin(ctx, GenerateRequested{}, &c.cancelGenerate)
	if err != nil || eff == nil {
		return err
	}
	return c.perform(callCtx, eff, &c.cancelGenerate)
}

// CancelUpload cancels the pending extraction, if any. The call still
// resolves through the normal path and reports a transport failure.
func (c *Controller) CancelUpload() bool {
	return c.cancel(&c.cancelUpload)
}

// CancelGenerate cancels the pending generation, if any.
func (c *Controller) CancelGenerate() bool {
	return c.cancel(&c.cancelGenerate)
}

func (c *Controller) cancel(slot *context.CancelFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if *slot == nil {
		return false
	}
	(*slot)()
	return true
}

// begin applies a request event and, when it yields a boundary call, arms
// the cancel slot in the same critical section. A request seen in flight
// is therefore always cancellable.
func (c *Controller) begin(ctx context.Context, ev Event, slot *context.CancelFunc) (Effect, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	eff, err := c.apply(ev)
	if err != nil || eff == nil {
		return eff, nil, err
	}
	callCtx, cancel := context.WithCancel(ctx)
	*slot = cancel
	return eff, callCtx, nil
}

func (c *Controller) perform(callCtx context.Context, eff Effect, slot *context.CancelFunc) error {
	start := time.Now()
	resolution := Run(callCtx, c.boundary, eff)

	c.mu.Lock()
	if *slot != nil {
		(*slot)()
		*slot = nil
	}
	c.mu.Unlock()

	c.logger.Debug("boundary_call",
		"effect", effectName(eff),
		"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
	)

	_, err := c.dispatch(resolution)
	return err
}

func (c *Controller) dispatch(ev Event) (Effect, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apply(ev)
}

// apply runs one transition. The caller holds mu.
func (c *Controller) apply(ev Event) (Effect, error) {
	next, eff, err := Reduce(c.state, ev)
	c.state = next

	attrs := []any{
		"event", fmt.Sprintf("%T", ev),
		"upload", string(next.Upload.Phase),
		"generate", string(next.Generate.Phase),
		"experiments", len(next.Experiments),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	c.logger.Debug("workflow_transition", attrs...)
	return eff, err
}

func effectName(eff Effect) string {
	switch eff.(type) {
	case ExtractCall:
		return "extract"
	case GenerateCall:
		return "generate"
	default:
		return "none"
	}
}
