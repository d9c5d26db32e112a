package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

const operation = "extract pdf text"

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of every page joined by newlines. Pages
// that fail to decode are skipped.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (text string, err error) {
	defer func() {
		// The reader panics on some malformed cross-reference tables.
		if r := recover(); r != nil {
			text = ""
			err = domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("%s: %v", filename, r))
		}
	}()

	reader, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("%s: %w", filename, err))
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}
