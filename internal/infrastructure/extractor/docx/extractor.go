package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

const (
	operation    = "extract docx text"
	documentPart = "word/document.xml"
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the body paragraphs of a Word document, one per line.
// Tables, headers and footers are not included.
func (e *Extractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("%s: %w", filename, err))
	}

	var part *zip.File
	for _, f := range archive.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("%s: %s not found", filename, documentPart))
	}

	rc, err := part.Open()
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("open %s: %w", documentPart, err))
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", documentPart, err)
	}

	var doc document
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("parse %s: %w", documentPart, err))
	}

	lines := make([]string, 0, len(doc.Body.Paras))
	for _, para := range doc.Body.Paras {
		lines = append(lines, para.text())
	}
	return strings.Join(lines, "\n"), nil
}

type document struct {
	XMLName xml.Name `xml:"document"`
	Body    body     `xml:"body"`
}

type body struct {
	Paras []paragraph `xml:"p"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
	Tabs  []struct{} `xml:"tab"`
	Break []struct{} `xml:"br"`
}

func (p paragraph) text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		for range r.Tabs {
			sb.WriteByte('\t')
		}
		for _, t := range r.Text {
			sb.WriteString(t.Content)
		}
		for range r.Break {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
