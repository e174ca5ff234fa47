// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package segment

import (
	"strings"
	"testing"

	"github.com/pdiddy/canon-engine/pkg/types"
)

func TestSegmentNoHeaders(t *testing.T) {
	text := "plain text line one\nline two\nline three"
	got := Segment(text)
	if len(got) != 1 {
		t.Fatalf("got %d sections, want 1", len(got))
	}
	want := types.Section{Title: DefaultTitle, Text: text + "\n", StartLine: 0, EndLine: 3}
	if got[0] != want {
		t.Errorf("section = %+v, want %+v", got[0], want)
	}
}

func TestSegmentMarkdownHeaders(t *testing.T) {
	got := Segment("# Intro\nHello\n# Methods\nWorld\n")
	want := []types.Section{
		{Title: "Intro", Text: "Hello\n", StartLine: 0, EndLine: 2},
		{Title: "Methods", Text: "World\n", StartLine: 2, EndLine: 4},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d sections, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("section %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSegmentHeaderKinds(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle []string
	}{
		{
			name:      "numbered headings",
			text:      "1 Introduction\nBody.\n2.1 Background\nMore.",
			wantTitle: []string{"Introduction", "Background"},
		},
		{
			name:      "all caps heading",
			text:      "ABSTRACT\nWe study fields.\nRESULTS AND DISCUSSION\nIt works.",
			wantTitle: []string{"ABSTRACT", "RESULTS AND DISCUSSION"},
		},
		{
			name:      "preamble keeps sentinel",
			text:      "Preamble.\n## Methods\nBody.",
			wantTitle: []string{DefaultTitle, "Methods"},
		},
		{
			name:      "indented heading",
			text:      "   ### Deep Heading   \nBody.",
			wantTitle: []string{"Deep Heading"},
		},
		{
			name:      "long caps line is body",
			text:      strings.Repeat("A", 61) + "\nmore body",
			wantTitle: []string{DefaultTitle},
		},
		{
			name:      "hash without space is body",
			text:      "#hashtag line\nbody",
			wantTitle: []string{DefaultTitle},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.text)
			var titles []string
			for _, s := range got {
				titles = append(titles, s.Title)
			}
			if strings.Join(titles, "|") != strings.Join(tt.wantTitle, "|") {
				t.Errorf("titles = %q, want %q", titles, tt.wantTitle)
			}
		})
	}
}

func TestSegmentDropsEmptySections(t *testing.T) {
	got := Segment("# First\n# Second\ncontent\n\n# Third\n   \n")
	if len(got) != 1 {
		t.Fatalf("got %d sections, want 1: %+v", len(got), got)
	}
	if got[0].Title != "Second" || got[0].StartLine != 1 || got[0].EndLine != 4 {
		t.Errorf("section = %+v", got[0])
	}
	if got[0].Text != "content\n\n" {
		t.Errorf("text = %q", got[0].Text)
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	if got := Segment(""); len(got) != 0 {
		t.Errorf("got %d sections for empty input", len(got))
	}
}
