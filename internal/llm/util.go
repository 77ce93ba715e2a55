// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanTitle strips surrounding whitespace and quote characters from a
// generated title. Models often quote titles even when instructed not to.
func CleanTitle(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	return strings.TrimSpace(text)
}
