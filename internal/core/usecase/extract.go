package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
	"github.com/kirillkom/lab-assistant/internal/core/ports"
)

const DefaultMaxUploadBytes int64 = 25 << 20

const opExtract = "extract experiments"

var _ ports.ExperimentExtractor = (*ExtractExperimentsUseCase)(nil)

type ExtractExperimentsUseCase struct {
	extractor ports.TextExtractor
	splitter  ports.ExperimentSplitter
	storage   ports.ObjectStorage
	observer  ports.ExtractionObserver
	maxBytes  int64
}

// NewExtractExperimentsUseCase builds the upload pipeline. storage and
// observer are optional.
func NewExtractExperimentsUseCase(
	extractor ports.TextExtractor,
	splitter ports.ExperimentSplitter,
	storage ports.ObjectStorage,
	observer ports.ExtractionObserver,
	maxBytes int64,
) *ExtractExperimentsUseCase {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &ExtractExperimentsUseCase{
		extractor: extractor,
		splitter:  splitter,
		storage:   storage,
		observer:  observer,
		maxBytes:  maxBytes,
	}
}

func (uc *ExtractExperimentsUseCase) Extract(
	ctx context.Context,
	filename string,
	body io.Reader,
) (experiments []domain.Experiment, err error) {
	if uc.observer != nil {
		defer func() {
			uc.observer.ObserveExtraction(domain.FileExtension(filename), len(experiments), err)
		}()
	}

	data, err := io.ReadAll(io.LimitReader(body, uc.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > uc.maxBytes {
		return nil, domain.WrapError(domain.ErrInvalidInput, opExtract, fmt.Errorf("file too large: limit is %d bytes", uc.maxBytes))
	}

	if uc.storage != nil {
		key := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeFilename(filename))
		if err := uc.storage.Save(ctx, key, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("save to object storage: %w", err)
		}
	}

	text, err := uc.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	experiments = uc.splitter.Split(text)
	if len(experiments) == 0 {
		return nil, domain.WrapError(domain.ErrNoExperiments, opExtract, fmt.Errorf("%s", filename))
	}
	return experiments, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "document.bin"
	}
	return base
}
