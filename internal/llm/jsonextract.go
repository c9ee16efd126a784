// Package llm - jsonextract.go recovers a JSON object from raw LLM output.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONFound is returned when a response contains no JSON object at all.
var ErrNoJSONFound = errors.New("no JSON found in LLM response")

// UnparsableJSONError is returned when the located object fails to parse,
// even after the repair pass.
type UnparsableJSONError struct {
	Snippet string
	Cause   error
}

func (e *UnparsableJSONError) Error() string {
	return fmt.Sprintf("invalid JSON in LLM response: %v", e.Cause)
}

func (e *UnparsableJSONError) Unwrap() error {
	return e.Cause
}

// ExtractJSON returns the first JSON object embedded in text.
// Markdown fences and surrounding prose are discarded, the object's closing
// brace is located with a string-aware scan, and trailing commas before a
// closing brace or bracket are repaired when the first parse fails.
func ExtractJSON(text string) (string, error) {
	text = StripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSONFound
	}

	candidate := text[start:objectEnd(text, start)]

	firstErr := checkSyntax(candidate)
	if firstErr == nil {
		return candidate, nil
	}

	repaired := stripTrailingCommas(candidate)
	if checkSyntax(repaired) == nil {
		return repaired, nil
	}

	return "", &UnparsableJSONError{
		Snippet: Truncate(candidate, 200),
		Cause:   firstErr,
	}
}

// DecodeJSON extracts the JSON object from text and unmarshals it into v.
func DecodeJSON(text string, v any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return &UnparsableJSONError{Snippet: Truncate(raw, 200), Cause: err}
	}
	return nil
}

// objectEnd returns the index just past the brace closing the object that
// opens at start. Braces inside string literals are ignored. When the object
// never closes, the remainder of the text is returned so the parser can
// report the truncation.
func objectEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

// stripTrailingCommas removes commas that directly precede (ignoring
// whitespace) a closing brace or bracket outside string literals.
func stripTrailingCommas(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			sb.WriteByte(c)
			continue
		}

		if c == '"' {
			inString = true
		}
		if c == ',' && closesNext(s, i+1) {
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// closesNext reports whether the next non-whitespace byte from i is } or ].
func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func checkSyntax(s string) error {
	var v any
	return json.Unmarshal([]byte(s), &v)
}
