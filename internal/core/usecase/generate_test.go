package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

type reportWriterFake struct {
	text   string
	report domain.Report
	err    error
	calls  int
}

func (f *reportWriterFake) WriteReport(_ context.Context, text string) (domain.Report, error) {
	f.calls++
	f.text = text
	if f.err != nil {
		return domain.Report{}, f.err
	}
	return f.report, nil
}

type generationObserverFake struct {
	calls int
	err   error
}

func (f *generationObserverFake) ObserveGeneration(err error) {
	f.calls++
	f.err = err
}

func TestGenerateSuccess(t *testing.T) {
	writer := &reportWriterFake{report: domain.Report{Procedure: "P", Theory: "T", Safety: "S"}}
	observer := &generationObserverFake{}
	uc := NewGenerateReportUseCase(writer, observer)

	report, err := uc.Generate(context.Background(), "Full B text")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if report.Theory != "T" || writer.text != "Full B text" {
		t.Fatalf("unexpected report %+v for %q", report, writer.text)
	}
	if observer.calls != 1 || observer.err != nil {
		t.Fatalf("unexpected observation %+v", observer)
	}
}

func TestGenerateRejectsBlankText(t *testing.T) {
	writer := &reportWriterFake{}
	observer := &generationObserverFake{}
	uc := NewGenerateReportUseCase(writer, observer)

	_, err := uc.Generate(context.Background(), "  \n\t")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if writer.calls != 0 || observer.calls != 0 {
		t.Fatalf("blank text must not reach the model")
	}
}

func TestGenerateWriterError(t *testing.T) {
	observer := &generationObserverFake{}
	uc := NewGenerateReportUseCase(&reportWriterFake{err: domain.WrapError(domain.ErrTemporary, "ollama generate", errors.New("503"))}, observer)

	_, err := uc.Generate(context.Background(), "text")
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if !errors.Is(observer.err, domain.ErrTemporary) {
		t.Fatalf("observer must see the failure")
	}
}
