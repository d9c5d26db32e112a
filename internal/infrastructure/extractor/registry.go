// Package extractor picks a text extractor for an upload by its extension.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/ports"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/extractor/docx"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/extractor/markup"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/lab-assistant/internal/infrastructure/extractor/xlsx"
)

const FormatText = "text"

type Registry struct {
	extractors map[string]ports.TextExtractor
	fallback   ports.TextExtractor
}

// NewRegistry returns a registry that sends unknown extensions to fallback.
func NewRegistry(fallback ports.TextExtractor) *Registry {
	return &Registry{
		extractors: make(map[string]ports.TextExtractor),
		fallback:   fallback,
	}
}

// Default wires every built-in format, with plain text as the fallback.
func Default() *Registry {
	r := NewRegistry(plaintext.NewExtractor())
	r.Register("pdf", pdf.NewExtractor())
	r.Register("docx", docx.NewExtractor())
	r.Register("xlsx", xlsx.NewExtractor())
	htmlExtractor := markup.NewExtractor()
	r.Register("html", htmlExtractor)
	r.Register("htm", htmlExtractor)
	return r
}

func (r *Registry) Register(format string, e ports.TextExtractor) {
	r.extractors[normalizeFormat(format)] = e
}

// Format is the registered format used for filename, or FormatText.
func (r *Registry) Format(filename string) string {
	format := domain.FileExtension(filename)
	if _, ok := r.extractors[format]; ok {
		return format
	}
	return FormatText
}

func (r *Registry) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	if e, ok := r.extractors[domain.FileExtension(filename)]; ok {
		return e.Extract(ctx, filename, data)
	}
	if r.fallback == nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text", fmt.Errorf("no extractor for %q", filename))
	}
	return r.fallback.Extract(ctx, filename, data)
}

func normalizeFormat(format string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
}
