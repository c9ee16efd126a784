package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Supported content types.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeText = "text/plain"
)

var (
	// ErrUnsupportedType is returned for documents that are not PDFs.
	ErrUnsupportedType = errors.New("unsupported document type; only PDF is accepted")
	// ErrEmptyDocument is returned when a document yields no text.
	ErrEmptyDocument = errors.New("document contains no extractable text")
)

// ExtractError wraps a failure from the PDF parser.
type ExtractError struct {
	Message string
	Cause   error
}

func (e *ExtractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// ExtractText returns the cleaned plain text of a PDF document.
// Content type parameters (e.g. "; charset=binary") are ignored.
func ExtractText(data []byte, contentType string) (string, error) {
	if mediaType(contentType) != ContentTypePDF {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	raw, err := extractPDFText(data)
	if err != nil {
		return "", err
	}

	text := CleanText(raw)
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractError{Message: "failed to read pdf", Cause: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractError{Message: "failed to read pdf", Cause: err}
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ExtractError{Message: fmt.Sprintf("failed to read page %d", i), Cause: err}
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
