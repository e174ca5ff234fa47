// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"slices"
	"testing"
)

func TestNormalizeExtensions(t *testing.T) {
	got := normalizeExtensions([]string{"PDF", ".Docx", " txt ", ""})
	want := []string{".pdf", ".docx", ".txt"}
	if !slices.Equal(got, want) {
		t.Errorf("normalizeExtensions = %v, want %v", got, want)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer statement", 10, "a longe..."},
		{"ΦΦΦΦΦΦΦΦ", 6, "ΦΦΦ..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	for _, path := range [][]string{
		{"ingest"},
		{"index", "store"},
		{"index", "retrieve"},
		{"index", "export"},
		{"index", "equations"},
		{"index", "trace"},
		{"schema", "validate"},
		{"schema", "init"},
		{"version"},
	} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Errorf("command %v not registered", path)
		}
	}
}
