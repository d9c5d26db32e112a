package httpadapter

import (
	"net/http"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrUnsupportedFormat),
		domain.IsKind(err, domain.ErrNoExperiments):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func extractDetail(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrNoExperiments):
		return "No experiments found."
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return "Unsupported file type"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "Invalid upload: " + err.Error()
	default:
		return "Failed to extract experiments: " + err.Error()
	}
}

func generateDetail(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "Experiment text empty."
	case domain.IsKind(err, domain.ErrTemporary):
		return "LLM unavailable: " + err.Error()
	default:
		return "LLM error: " + err.Error()
	}
}
