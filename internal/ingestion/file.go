package ingestion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile loads a resume from disk. Files ending in .pdf go through
// ExtractText; anything else is read as plain text.
func ReadFile(path string) (string, *Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	name := filepath.Base(path)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := ExtractText(data, ContentTypePDF)
		if err != nil {
			return "", nil, err
		}
		return text, NewMetadata(name, ContentTypePDF, data), nil
	}

	text := CleanText(string(data))
	if text == "" {
		return "", nil, ErrEmptyDocument
	}
	return text, NewMetadata(name, ContentTypeText, data), nil
}
