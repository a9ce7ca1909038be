package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/doclens-ai/doclens/internal/domain"
	"github.com/ledongthuc/pdf"
)

func (e *Extractor) extractPDF(path string) (*Result, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	if e.MaxPages > 0 && total > e.MaxPages {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeDocumentTooLarge,
			"document exceeds the page limit",
			fmt.Errorf("%d pages, limit %d", total, e.MaxPages))
	}

	var b strings.Builder
	offsets := make([]int, 0, total)
	runeCount := 0
	for i := 1; i <= total; i++ {
		offsets = append(offsets, runeCount)

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Pages that fail to decode are skipped rather than failing
		// the whole document.
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n\n")
		runeCount += utf8.RuneCountInString(text) + 2
	}

	return &Result{
		Text:        b.String(),
		PageCount:   total,
		PageOffsets: offsets,
	}, nil
}
