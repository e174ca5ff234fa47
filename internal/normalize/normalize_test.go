// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "hyphen join", in: "exam-\nple", want: "example"},
		{name: "blank line run", in: "foo\n\n\n\nbar", want: "foo\n\nbar"},
		{name: "paragraph break kept", in: "foo\n\nbar", want: "foo\n\nbar"},
		{name: "crlf", in: "a\r\nb\rc", want: "a\nb\nc"},
		{name: "crlf blank run", in: "a\r\n\r\n\r\n\r\nb", want: "a\n\nb"},
		{name: "spaces and tabs", in: "a  \t b\t\tc", want: "a b c"},
		{name: "trim", in: "  \n\n text \n\n ", want: "text"},
		{name: "hyphen chain", in: "a-\nb-\nc", want: "abc"},
		{name: "hyphen before space kept", in: "well- \nknown", want: "well- \nknown"},
		{name: "dash between words kept", in: "well-known", want: "well-known"},
		{name: "unicode letters joined", in: "équa-\ntion", want: "équation"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"exam-\nple",
		"a-\nb-\nc-\nd",
		"foo\n\n\n\nbar",
		" \n \n \n x\t\ty \r\n\r\n\r\n z ",
		"line one\r\nline-\r\ntwo\n\n\n\n\nthree   four",
		"x- \n-\ny",
		"\t\t",
		"1. Intro\n\n\n\nThe scalar field Φ_c couples to mat-\nter.",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
