// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/canon-engine/internal/container"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// DefaultPDFImage is the container image used when none is configured.
const DefaultPDFImage = "markitdown:latest"

// MarkitdownDecoder converts PDFs by piping them through the markitdown
// container image.
type MarkitdownDecoder struct {
	runtime container.Runtime
	image   string
}

// NewMarkitdownDecoder verifies the image exists locally in rt. An empty
// image selects DefaultPDFImage.
func NewMarkitdownDecoder(ctx context.Context, rt container.Runtime, image string) (*MarkitdownDecoder, error) {
	if image == "" {
		image = DefaultPDFImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &MarkitdownDecoder{runtime: rt, image: image}, nil
}

func (m *MarkitdownDecoder) Decode(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: opening PDF %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := m.runtime.Run(ctx, m.image, f, &out); err != nil {
		return Result{}, fmt.Errorf("%w: converting %s with markitdown: %v", ErrDecode, path, err)
	}
	if strings.TrimSpace(out.String()) == "" {
		return Result{}, fmt.Errorf("%w: markitdown produced empty output for %s", ErrDecode, path)
	}

	text := out.String()
	return Result{Text: text, Pages: formFeedPages(text), ContentType: types.ContentTypePDF}, nil
}

// formFeedPages counts pages separated by form feeds. Trailing form feeds
// do not start a page. Output without form feeds has no page count.
func formFeedPages(text string) *int {
	n := strings.Count(strings.TrimRight(text, "\f\r\n\t "), "\f")
	if n == 0 {
		return nil
	}
	pages := n + 1
	return &pages
}
