package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

func (e *Extractor) extractDOCX(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse docx: %w", err)
	}

	var b strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			text := strings.TrimSpace(v.String())
			if text == "" {
				continue
			}
			b.WriteString(text)
			b.WriteString("\n\n")
		case *docx.Table:
			text := strings.TrimSpace(v.String())
			if text == "" {
				continue
			}
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}

	return &Result{Text: b.String()}, nil
}
