// Package resume extracts a canonical profile from resume text.
package resume

import (
	"fmt"
	"strings"
)

// ExtractionFailedError is returned when no usable profile can be produced,
// either because the input is empty or because the LLM could not be reached.
type ExtractionFailedError struct {
	Message string
	Cause   error
}

func (e *ExtractionFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resume extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("resume extraction failed: %s", e.Message)
}

func (e *ExtractionFailedError) Unwrap() error {
	return e.Cause
}

// ValidationFailedError is returned when the assembled profile still violates
// the canonical schema after normalization.
type ValidationFailedError struct {
	Fields []string
	Cause  error
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("resume profile failed validation on: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationFailedError) Unwrap() error {
	return e.Cause
}
