// Package ingestion turns uploaded resume documents into cleaned plain text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	multiSpace  = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLines  = regexp.MustCompile(`\n\n\n+`)
	bulletGlyph = []string{"- ", "* ", "• ", "· ", "▪ "}
)

// CleanText cleans and normalizes extracted text while preserving line structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	// Normalize line endings (CRLF → LF)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = removeExcessiveBlankLines(result)

	return strings.TrimSpace(result)
}

// cleanLine collapses runs of horizontal whitespace and trims the line.
// Bullet markers are kept so list items stay recognizable to the model.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	if isBulletLine(trimmed) {
		marker := trimmed[:strings.Index(trimmed, " ")+1]
		return marker + multiSpace.ReplaceAllString(strings.TrimSpace(trimmed[len(marker):]), " ")
	}
	return multiSpace.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	for _, glyph := range bulletGlyph {
		if strings.HasPrefix(line, glyph) {
			return true
		}
	}
	return false
}

// removeExcessiveBlankLines reduces consecutive blank lines to max 2
func removeExcessiveBlankLines(content string) string {
	return blankLines.ReplaceAllString(content, "\n\n")
}
