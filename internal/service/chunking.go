package service

import "unicode"

// ChunkConfig controls how extracted text is split for embedding.
type ChunkConfig struct {
	TargetChars int
	Overlap     int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		TargetChars: 1000,
		Overlap:     200,
	}
}

// TextChunk is a segment of the original text. Start is the rune offset of
// the chunk's first character in the input, used to map chunks back to pages.
type TextChunk struct {
	Index     int
	Content   string
	CharCount int
	Start     int
}

// ChunkText splits text into overlapping chunks of roughly TargetChars runes.
// Cut points prefer a paragraph break, then a sentence end, then any
// whitespace, searched backward from the target position; only when none
// exists in the window does it cut mid-word. Chunks cover the input in order
// and indices are contiguous from zero.
func ChunkText(text string, cfg ChunkConfig) []TextChunk {
	if cfg.TargetChars <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	if cfg.Overlap >= cfg.TargetChars {
		cfg.Overlap = cfg.TargetChars / 5
	}

	runes := []rune(text)
	n := len(runes)

	start := 0
	for start < n && unicode.IsSpace(runes[start]) {
		start++
	}
	if start >= n {
		return nil
	}

	chunks := make([]TextChunk, 0, 8)
	for start < n {
		end := start + cfg.TargetChars
		if end >= n {
			end = n
		} else {
			end = findCut(runes, start, end)
		}

		cs, ce := start, end
		for cs < ce && unicode.IsSpace(runes[cs]) {
			cs++
		}
		for ce > cs && unicode.IsSpace(runes[ce-1]) {
			ce--
		}
		if ce > cs {
			chunks = append(chunks, TextChunk{
				Index:     len(chunks),
				Content:   string(runes[cs:ce]),
				CharCount: ce - cs,
				Start:     cs,
			})
		}

		if end >= n {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// findCut scans backward from limit for the best boundary, never going below
// the midpoint of the window so chunks stay reasonably sized.
func findCut(runes []rune, start, limit int) int {
	floor := start + (limit-start)/2

	for i := limit; i > floor; i-- {
		if runes[i-1] == '\n' && i-2 >= start && runes[i-2] == '\n' {
			return i
		}
	}

	for i := limit; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) && i-2 >= start && isSentenceEnd(runes[i-2]) {
			return i
		}
	}

	for i := limit; i > floor; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return limit
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return false
}
