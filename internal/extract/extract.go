package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/doclens-ai/doclens/internal/domain"
)

// Format identifies a supported document format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatTXT  Format = "txt"
	FormatXLSX Format = "xlsx"
)

// WordsPerPage is the estimate used for formats without real pagination.
const WordsPerPage = 400

// Result holds the extracted text and pagination metadata. PageOffsets maps
// each page to the rune offset where its text begins; it is nil for formats
// whose page count is a word-count estimate.
type Result struct {
	Text        string
	PageCount   int
	PageOffsets []int
	WordCount   int
}

// Extractor turns stored documents into plain text. MaxPages bounds document
// size; estimated page counts only reject when HardEstimates is set, real
// PDF page counts always do.
type Extractor struct {
	MaxPages      int
	HardEstimates bool
}

// NewExtractor creates an Extractor with the given page ceiling.
func NewExtractor(maxPages int, hardEstimates bool) *Extractor {
	return &Extractor{MaxPages: maxPages, HardEstimates: hardEstimates}
}

// FormatFromContentType resolves a format from a MIME type, falling back to
// the filename extension. Unknown formats yield ErrUnsupportedFormat.
func FormatFromContentType(contentType, filename string) (Format, error) {
	ct := contentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))

	switch ct {
	case "application/pdf":
		return FormatPDF, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FormatDOCX, nil
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX, nil
	}
	if strings.HasPrefix(ct, "text/") {
		return FormatTXT, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".txt", ".md", ".text":
		return FormatTXT, nil
	}

	return "", domain.NewDomainErrorWithCause(domain.ErrCodeUnsupportedFormat,
		"unsupported document format", fmt.Errorf("content type %q, file %q", contentType, filename))
}

// Extract reads the file at path and returns its text and pagination info.
func (e *Extractor) Extract(ctx context.Context, path string, format Format) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch format {
	case FormatPDF:
		res, err = e.extractPDF(path)
	case FormatDOCX:
		res, err = e.extractDOCX(path)
	case FormatXLSX:
		res, err = e.extractXLSX(path)
	case FormatTXT:
		res, err = e.extractTXT(path)
	default:
		return nil, domain.ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}

	res.WordCount = len(strings.Fields(res.Text))
	if res.PageOffsets == nil {
		res.PageCount = estimatePages(res.WordCount)
		if e.HardEstimates && e.MaxPages > 0 && res.PageCount > e.MaxPages {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeDocumentTooLarge,
				"document exceeds the page limit",
				fmt.Errorf("estimated %d pages, limit %d", res.PageCount, e.MaxPages))
		}
	}
	return res, nil
}

// PageForOffset returns the 1-based page containing the given rune offset,
// or 0 when the result has no real pagination.
func PageForOffset(offsets []int, off int) int {
	if len(offsets) == 0 {
		return 0
	}
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > off })
	if i == 0 {
		return 1
	}
	return i
}

func estimatePages(words int) int {
	if words == 0 {
		return 0
	}
	pages := (words + WordsPerPage - 1) / WordsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
