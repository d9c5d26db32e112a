package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/resilience"
)

// HTTPStatusError is a non-success reply from the Ollama API.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, e.Body)
}

// Retryable reports whether the model server may succeed on a later attempt.
func (e *HTTPStatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

var (
	classRetry   = resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	classFail    = resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	classIgnored = resilience.ErrorClassification{}
)

func classifyOllamaError(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	var netErr net.Error

	switch {
	case err == nil:
		return classIgnored
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The caller gave up; the model server is not at fault.
		return classIgnored
	case resilience.IsCircuitOpen(err):
		return classRetry
	case errors.As(err, &statusErr):
		if statusErr.Retryable() {
			return classRetry
		}
		// A 4xx means the request was wrong, which says nothing about health.
		return classIgnored
	case errors.As(err, &netErr):
		return classRetry
	default:
		return classFail
	}
}

// wrapTemporaryIfNeeded tags errors worth retrying later with
// domain.ErrTemporary so the HTTP layer can answer 503.
func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyOllamaError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
