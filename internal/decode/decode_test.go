// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDOCX(t *testing.T, dir, name, documentXML string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create(docxBody)
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestTextDecoder(t *testing.T) {
	dir := t.TempDir()
	// "e" followed by a combining acute accent composes to U+00E9.
	path := writeFile(t, dir, "a.txt", "\uFEFFcafe\u0301 \xff ok")

	res, err := TextDecoder{ContentType: types.ContentTypeText}.Decode(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9 \uFFFD ok", res.Text)
	assert.Nil(t, res.Pages)
	assert.Equal(t, types.ContentTypeText, res.ContentType)

	_, err = TextDecoder{}.Decode(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestHTMLDecoder(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.html", `<html><head><title>T</title><style>x{}</style></head>
<body><h2>Methods</h2><p>The field   couples.</p><script>bad()</script>
<p>Second <b>bold</b> para.</p></body></html>`)

	res, err := HTMLDecoder{}.Decode(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "T\n## Methods\nThe field couples.\nSecond bold para.\n", res.Text)
	assert.Equal(t, types.ContentTypeHTML, res.ContentType)
}

func TestDOCXDecoder(t *testing.T) {
	dir := t.TempDir()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	body.WriteString(`<w:p><w:r><w:t>INTRODUCTION</w:t></w:r></w:p>`)
	body.WriteString(`<w:p><w:r><w:t xml:space="preserve">The field </w:t></w:r><w:r><w:t>couples.</w:t></w:r></w:p>`)
	body.WriteString(`<w:p><w:r><w:t>   </w:t></w:r></w:p>`)
	for range 40 {
		body.WriteString(`<w:p><w:r><w:t>x</w:t><w:tab/><w:t>y</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)
	path := writeDOCX(t, dir, "doc.docx", body.String())

	res, err := DOCXDecoder{}.Decode(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Text, "INTRODUCTION\n\nThe field couples.\n\nx\ty\n\n"))
	require.NotNil(t, res.Pages)
	assert.Equal(t, 2, *res.Pages)
	assert.Equal(t, types.ContentTypeDOCX, res.ContentType)
}

func TestDOCXDecoderRejectsNonZip(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.docx", "not a zip")
	_, err := DOCXDecoder{}.Decode(context.Background(), path)
	assert.ErrorIs(t, err, ErrDecode)
}

type fakeRuntime struct {
	imageErr error
	output   string
	runErr   error
}

func (f *fakeRuntime) Name() string                              { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool            { return true }
func (f *fakeRuntime) ImageExists(context.Context, string) error { return f.imageErr }
func (f *fakeRuntime) Run(_ context.Context, _ string, stdin io.Reader, stdout io.Writer) error {
	if f.runErr != nil {
		return f.runErr
	}
	_, _ = io.ReadAll(stdin)
	_, err := io.WriteString(stdout, f.output)
	return err
}

func TestMarkitdownDecoder(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "paper.pdf", "%PDF-1.4")

	_, err := NewMarkitdownDecoder(ctx, &fakeRuntime{imageErr: errors.New("missing")}, "")
	assert.Error(t, err)

	d, err := NewMarkitdownDecoder(ctx, &fakeRuntime{output: "# Title\n\nBody"}, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultPDFImage, d.image)
	res, err := d.Decode(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", res.Text)
	assert.Equal(t, types.ContentTypePDF, res.ContentType)
	assert.Nil(t, res.Pages)

	paged, err := NewMarkitdownDecoder(ctx, &fakeRuntime{output: "Page one\fPage two\fPage three\f\n"}, "")
	require.NoError(t, err)
	res, err = paged.Decode(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, res.Pages)
	assert.Equal(t, 3, *res.Pages)

	empty, err := NewMarkitdownDecoder(ctx, &fakeRuntime{output: "  \n"}, "custom:1")
	require.NoError(t, err)
	_, err = empty.Decode(ctx, path)
	assert.ErrorIs(t, err, ErrDecode)

	failing, err := NewMarkitdownDecoder(ctx, &fakeRuntime{runErr: errors.New("boom")}, "")
	require.NoError(t, err)
	_, err = failing.Decode(ctx, path)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestSetDispatch(t *testing.T) {
	dir := t.TempDir()
	s := NewSet(nil)
	s.Register(TextDecoder{ContentType: types.ContentTypeMarkdown}, "MD")

	md := writeFile(t, dir, "notes.Md", "# Notes")
	assert.True(t, s.Supports(md))
	res, err := s.Decode(context.Background(), md)
	require.NoError(t, err)
	assert.Equal(t, types.ContentTypeMarkdown, res.ContentType)

	csv := writeFile(t, dir, "data.csv", "a,b")
	assert.False(t, s.Supports(csv))
	_, err = s.Decode(context.Background(), csv)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, []string{".md"}, s.Extensions())
}

func TestNewDefaultWithoutPDF(t *testing.T) {
	var warn strings.Builder
	s := NewDefault(context.Background(), types.DecodeConfig{DisablePDF: true}, nil, &warn)
	assert.Empty(t, warn.String())
	for _, name := range []string{"a.txt", "b.md", "c.html", "d.htm", "e.docx"} {
		assert.True(t, s.Supports(name), name)
	}
	assert.False(t, s.Supports("f.pdf"))
}
