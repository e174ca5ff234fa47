// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits normalized document text into titled sections.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// DefaultTitle names the section that precedes the first heading.
const DefaultTitle = "Introduction"

// maxCapsHeading bounds the length of an all-uppercase heading line.
const maxCapsHeading = 60

// headerPatterns are tried in order against each trimmed line; the first
// match wins and its last capture group becomes the section title.
var headerPatterns = []*regexp.Regexp{
	// Markdown headings: "# Title" through "###### Title".
	regexp.MustCompile(`^(#{1,6})\s+(.+)$`),
	// Dotted numeric headings: "1 Intro", "2.3.1 Background".
	regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.+)$`),
	// Short all-uppercase lines: "RESULTS AND DISCUSSION".
	regexp.MustCompile(`^([A-Z][A-Z\s]+)$`),
}

// matchHeader reports whether line is a heading and returns its title.
func matchHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	for i, re := range headerPatterns {
		if i == len(headerPatterns)-1 && utf8.RuneCountInString(trimmed) > maxCapsHeading {
			continue
		}
		m := re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		title := m[len(m)-1]
		if title == "" {
			title = m[0]
		}
		return strings.TrimSpace(title), true
	}
	return "", false
}

// Segment splits text into sections at heading lines. Body text before the
// first heading belongs to a section titled DefaultTitle. Sections whose
// body is blank (for example two headings back to back) are dropped.
func Segment(text string) []types.Section {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	var sections []types.Section
	current := types.Section{Title: DefaultTitle}
	var body strings.Builder

	flush := func(end int) {
		if strings.TrimSpace(body.String()) == "" {
			return
		}
		current.Text = body.String()
		current.EndLine = end
		sections = append(sections, current)
	}

	for i, line := range lines {
		if title, ok := matchHeader(line); ok {
			flush(i)
			current = types.Section{Title: title, StartLine: i}
			body.Reset()
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	flush(len(lines))
	return sections
}
