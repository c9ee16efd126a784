// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"strings"
	"unicode/utf8"
)

// fenceReplacer drops markdown code-fence markers wherever they appear.
var fenceReplacer = strings.NewReplacer("```json", "", "```JSON", "", "```", "")

// StripFences removes markdown code-fence markers from an LLM response.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to,
// and sometimes surround the block with prose.
func StripFences(text string) string {
	return strings.TrimSpace(fenceReplacer.Replace(text))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
// Multi-byte characters are never split.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
