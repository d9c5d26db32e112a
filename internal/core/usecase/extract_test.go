package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

type extractStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *extractStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *extractStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type textExtractorFake struct {
	filename string
	data     string
	text     string
	err      error
}

func (f *textExtractorFake) Extract(_ context.Context, filename string, data []byte) (string, error) {
	f.filename = filename
	f.data = string(data)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type splitterFake struct {
	text string
	out  []domain.Experiment
}

func (f *splitterFake) Split(text string) []domain.Experiment {
	f.text = text
	return f.out
}

type extractionObserverFake struct {
	format      string
	experiments int
	err         error
	calls       int
}

func (f *extractionObserverFake) ObserveExtraction(format string, experiments int, err error) {
	f.calls++
	f.format, f.experiments, f.err = format, experiments, err
}

func TestExtractSuccess(t *testing.T) {
	storage := &extractStorageFake{}
	extractor := &textExtractorFake{text: "Experiment 1 text"}
	splitter := &splitterFake{out: []domain.Experiment{{ID: "0", Title: "Experiment 1", Text: "Experiment 1 text"}}}
	observer := &extractionObserverFake{}
	uc := NewExtractExperimentsUseCase(extractor, splitter, storage, observer, 0)

	got, err := uc.Extract(context.Background(), "lab manual.pdf", bytes.NewBufferString("raw bytes"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(got) != 1 || got[0].Title != "Experiment 1" {
		t.Fatalf("unexpected experiments %+v", got)
	}
	if extractor.filename != "lab manual.pdf" || extractor.data != "raw bytes" {
		t.Fatalf("extractor got %q %q", extractor.filename, extractor.data)
	}
	if splitter.text != "Experiment 1 text" {
		t.Fatalf("splitter got %q", splitter.text)
	}
	if !strings.HasSuffix(storage.savedKey, "_lab_manual.pdf") || storage.savedBody != "raw bytes" {
		t.Fatalf("unexpected archive %q %q", storage.savedKey, storage.savedBody)
	}
	if observer.calls != 1 || observer.format != "pdf" || observer.experiments != 1 || observer.err != nil {
		t.Fatalf("unexpected observation %+v", observer)
	}
}

func TestExtractWithoutStorage(t *testing.T) {
	splitter := &splitterFake{out: []domain.Experiment{{ID: "0"}}}
	uc := NewExtractExperimentsUseCase(&textExtractorFake{text: "x"}, splitter, nil, nil, 0)
	if _, err := uc.Extract(context.Background(), "a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
}

func TestExtractNoExperiments(t *testing.T) {
	observer := &extractionObserverFake{}
	uc := NewExtractExperimentsUseCase(&textExtractorFake{text: "notes"}, &splitterFake{}, nil, observer, 0)

	_, err := uc.Extract(context.Background(), "a.txt", strings.NewReader("notes"))
	if !errors.Is(err, domain.ErrNoExperiments) {
		t.Fatalf("expected ErrNoExperiments, got %v", err)
	}
	if !errors.Is(observer.err, domain.ErrNoExperiments) {
		t.Fatalf("observer must see the failure, got %v", observer.err)
	}
}

func TestExtractTooLarge(t *testing.T) {
	extractor := &textExtractorFake{}
	uc := NewExtractExperimentsUseCase(extractor, &splitterFake{}, nil, nil, 4)

	_, err := uc.Extract(context.Background(), "a.txt", strings.NewReader("12345"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if extractor.filename != "" {
		t.Fatalf("extractor must not run for oversized uploads")
	}
}

func TestExtractPropagatesErrors(t *testing.T) {
	uc := NewExtractExperimentsUseCase(
		&textExtractorFake{err: domain.WrapError(domain.ErrUnsupportedFormat, "extract pdf text", errors.New("bad xref"))},
		&splitterFake{}, nil, nil, 0,
	)
	_, err := uc.Extract(context.Background(), "a.pdf", strings.NewReader("x"))
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}

	uc = NewExtractExperimentsUseCase(&textExtractorFake{}, &splitterFake{}, &extractStorageFake{err: errors.New("disk full")}, nil, 0)
	_, err = uc.Extract(context.Background(), "a.pdf", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report 1.txt":     "report_1.txt",
		"../../etc/passwd": "passwd",
		"отчёт.pdf":        "_____.pdf",
		"":                 "document.bin",
	}
	for in, want := range tests {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
