package extract

import (
	"fmt"
	"os"
)

func (e *Extractor) extractTXT(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}
	return &Result{Text: string(data)}, nil
}
