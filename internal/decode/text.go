// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TextDecoder reads UTF-8 text files. Invalid byte sequences become U+FFFD
// and the result is NFC-composed so equal-looking formulas compare equal.
type TextDecoder struct {
	ContentType string
}

func (d TextDecoder) Decode(_ context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading %s: %v", ErrDecode, path, err)
	}
	text := strings.ToValidUTF8(string(data), "\uFFFD")
	text = strings.TrimPrefix(text, "\uFEFF")
	return Result{Text: norm.NFC.String(text), ContentType: d.ContentType}, nil
}
