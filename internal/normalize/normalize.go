// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize cleans decoded document text before segmentation.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// hyphenBreakRe matches a word split across a line break by a hyphen.
	hyphenBreakRe = regexp.MustCompile(`([\p{L}\p{N}_])-\n([\p{L}\p{N}_])`)

	// horizontalSpaceRe matches runs of spaces and tabs.
	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)

	// blankRunRe matches three or more consecutive newlines.
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize converts line endings to "\n", joins words hyphenated across
// line breaks, collapses horizontal whitespace to one space and blank-line
// runs to a single paragraph break, and trims the result.
//
// Normalize is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = lineEndings.Replace(text)
	text = joinHyphenated(text)
	text = horizontalSpaceRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// joinHyphenated repeats the join until nothing matches. A single pass
// leaves chains like "a-\nb-\nc" half joined because matches cannot overlap.
func joinHyphenated(text string) string {
	for {
		joined := hyphenBreakRe.ReplaceAllString(text, "${1}${2}")
		if joined == text {
			return text
		}
		text = joined
	}
}
