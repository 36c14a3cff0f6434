// Package comments measures how much of a source file is line comments and
// how readable that comment prose is.
package comments

import (
	"strings"

	"github.com/Sumatoshi-tech/codelex/pkg/textutil"
)

// DefaultMarker is the line-comment marker for Python sources.
const DefaultMarker = "#"

// IsCommentLine reports whether the whitespace-trimmed line starts with marker.
func IsCommentLine(line, marker string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), marker)
}

// Density returns the fraction of lines in content that are comment lines.
// An empty file has density 0.
func Density(content []byte, marker string) float64 {
	lines := textutil.Lines(content)
	if len(lines) == 0 {
		return 0
	}

	count := 0

	for _, line := range lines {
		if IsCommentLine(line, marker) {
			count++
		}
	}

	return float64(count) / float64(len(lines))
}

// Text returns the prose of every comment line: the marker is stripped once
// and surrounding whitespace removed. Lines left empty are dropped.
func Text(content []byte, marker string) []string {
	var out []string

	for _, line := range textutil.Lines(content) {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, marker) {
			continue
		}

		prose := strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
		if prose != "" {
			out = append(out, prose)
		}
	}

	return out
}

// Readability joins the comment prose of content with single spaces and
// scores it with Flesch reading ease. Files without comment prose score 0.
func Readability(content []byte, marker string) float64 {
	prose := Text(content, marker)
	if len(prose) == 0 {
		return 0
	}

	return FleschReadingEase(strings.Join(prose, " "))
}
