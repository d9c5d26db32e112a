package plaintext

import (
	"context"
	"strings"
)

// Extractor decodes uploads as UTF-8 text. Invalid byte sequences are
// dropped rather than rejected so that odd encodings still yield text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, _ string, data []byte) (string, error) {
	return strings.ToValidUTF8(string(data), ""), nil
}
