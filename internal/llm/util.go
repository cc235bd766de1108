// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code fence markers from a model response.
// Models often wrap JSON in ```json ... ``` blocks even when told not to, so
// every fence marker is dropped, not only leading and trailing ones.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
