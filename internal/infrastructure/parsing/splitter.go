package parsing

import (
	"regexp"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

const DefaultPreviewChars = 300

// experimentHeading matches the lines that open an experiment section.
var experimentHeading = regexp.MustCompile(
	`(?i)(Experiment\s*\d+|Exp\s*\d+|EXPERIMENT\s*\d+|Practical\s*\d+|\n\d+\.\s+[A-Za-z].+)`,
)

type Splitter struct {
	PreviewChars int
}

func NewSplitter(previewChars int) *Splitter {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &Splitter{PreviewChars: previewChars}
}

// Split cuts text at every experiment heading. Each section runs up to the
// next heading; text before the first heading is dropped. Ids are the
// 0-based section positions.
func (s *Splitter) Split(text string) []domain.Experiment {
	matches := experimentHeading.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	out := make([]domain.Experiment, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[0]:end])
		out = append(out, domain.Experiment{
			ID:      domain.NewExperimentID(i),
			Title:   strings.TrimSpace(text[m[0]:m[1]]),
			Preview: s.preview(body),
			Text:    body,
		})
	}
	return out
}

func (s *Splitter) preview(body string) string {
	runes := []rune(body)
	if len(runes) > s.PreviewChars {
		runes = runes[:s.PreviewChars]
	}
	return strings.ReplaceAll(string(runes), "\n", " ")
}
