// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package decode turns source files into plain text. Each format has its own
// Decoder; a Set dispatches on the lowercase file extension.
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdiddy/canon-engine/internal/container"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// ErrUnsupportedFormat is returned for files no registered decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrDecode wraps failures while reading or parsing a supported file.
var ErrDecode = errors.New("decode failed")

// Result is the decoded text of one document.
type Result struct {
	Text        string
	Pages       *int
	ContentType string
}

// Decoder extracts text from the file at path.
type Decoder interface {
	Decode(ctx context.Context, path string) (Result, error)
}

// Set maps file extensions to decoders.
type Set struct {
	byExt  map[string]Decoder
	logger *slog.Logger
}

// NewSet returns an empty Set. A nil logger discards debug output.
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Set{byExt: make(map[string]Decoder), logger: logger}
}

// Register associates d with each extension (".txt" or "txt").
func (s *Set) Register(d Decoder, exts ...string) {
	for _, e := range exts {
		s.byExt[canonicalExt(e)] = d
	}
}

// Supports reports whether a decoder is registered for path's extension.
func (s *Set) Supports(path string) bool {
	_, ok := s.byExt[canonicalExt(filepath.Ext(path))]
	return ok
}

// Extensions returns the registered extensions.
func (s *Set) Extensions() []string {
	out := make([]string, 0, len(s.byExt))
	for e := range s.byExt {
		out = append(out, e)
	}
	return out
}

// Decode dispatches to the decoder registered for path's extension.
func (s *Set) Decode(ctx context.Context, path string) (Result, error) {
	ext := canonicalExt(filepath.Ext(path))
	d, ok := s.byExt[ext]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	s.logger.Debug("decoding document", "path", path, "ext", ext)
	res, err := d.Decode(ctx, path)
	if err != nil {
		return Result{}, err
	}
	s.logger.Debug("decoded document", "path", path, "content_type", res.ContentType, "runes", len([]rune(res.Text)))
	return res, nil
}

func canonicalExt(e string) string {
	e = strings.ToLower(e)
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}

// NewDefault registers the built-in decoders: plain text and Markdown, HTML,
// DOCX, and PDF through the markitdown container when a container runtime
// and the image are available. Reasons PDF support is off are written to
// warn.
func NewDefault(ctx context.Context, cfg types.DecodeConfig, logger *slog.Logger, warn io.Writer) *Set {
	s := NewSet(logger)
	s.Register(TextDecoder{ContentType: types.ContentTypeText}, ".txt")
	s.Register(TextDecoder{ContentType: types.ContentTypeMarkdown}, ".md", ".markdown")
	s.Register(HTMLDecoder{}, ".html", ".htm")
	s.Register(DOCXDecoder{}, ".docx")

	if cfg.DisablePDF {
		return s
	}
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		fmt.Fprintf(warn, "warning: PDF decoding disabled: %v\n", err)
		return s
	}
	pdf, err := NewMarkitdownDecoder(ctx, rt, cfg.PDFImage)
	if err != nil {
		fmt.Fprintf(warn, "warning: PDF decoding disabled: %v\n", err)
		return s
	}
	s.Register(pdf, ".pdf")
	return s
}
