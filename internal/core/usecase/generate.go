package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/ports"
)

const opGenerate = "generate report"

var _ ports.ReportGenerator = (*GenerateReportUseCase)(nil)

type GenerateReportUseCase struct {
	writer   ports.ReportWriter
	observer ports.GenerationObserver
}

func NewGenerateReportUseCase(writer ports.ReportWriter, observer ports.GenerationObserver) *GenerateReportUseCase {
	return &GenerateReportUseCase{
		writer:   writer,
		observer: observer,
	}
}

func (uc *GenerateReportUseCase) Generate(ctx context.Context, experimentText string) (report domain.Report, err error) {
	if strings.TrimSpace(experimentText) == "" {
		return domain.Report{}, domain.WrapError(domain.ErrInvalidInput, opGenerate, errors.New("experiment text is empty"))
	}
	if uc.observer != nil {
		defer func() { uc.observer.ObserveGeneration(err) }()
	}

	report, err = uc.writer.WriteReport(ctx, experimentText)
	if err != nil {
		return domain.Report{}, fmt.Errorf("write report: %w", err)
	}
	return report, nil
}
