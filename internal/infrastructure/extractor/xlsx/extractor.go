package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

const operation = "extract xlsx text"

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract renders every sheet row as one line with cells separated by
// " | ". Sheets are separated by a blank line.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("%s: %w", filename, err))
	}
	defer f.Close()

	sheets := make([]string, 0, len(f.GetSheetList()))
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}

		var sb strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		if sb.Len() > 0 {
			sheets = append(sheets, strings.TrimRight(sb.String(), "\n"))
		}
	}
	return strings.Join(sheets, "\n\n"), nil
}
