// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// paragraphsPerPage is the rough paragraph count used to estimate pages,
// since DOCX has no fixed pagination.
const paragraphsPerPage = 20

const docxBody = "word/document.xml"

// DOCXDecoder reads the main document part of a Word file. Non-empty
// paragraphs are joined with blank lines.
type DOCXDecoder struct{}

func (DOCXDecoder) Decode(_ context.Context, path string) (Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: opening %s: %v", ErrDecode, path, err)
	}
	defer zr.Close()

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return Result{}, fmt.Errorf("%w: %s has no %s", ErrDecode, path, docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return Result{}, fmt.Errorf("%w: reading %s: %v", ErrDecode, docxBody, err)
	}
	defer rc.Close()

	paras, err := docxParagraphs(rc)
	if err != nil {
		return Result{}, fmt.Errorf("%w: parsing %s: %v", ErrDecode, path, err)
	}

	pages := len(paras) / paragraphsPerPage
	return Result{
		Text:        norm.NFC.String(strings.Join(paras, "\n\n")),
		Pages:       &pages,
		ContentType: types.ContentTypeDOCX,
	}, nil
}

// docxParagraphs returns the trimmed, non-empty text of each w:p element.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var paras []string
	var cur strings.Builder
	inPara, inText := false, false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = true
			case "tab":
				if inPara {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if s := strings.TrimSpace(cur.String()); s != "" {
					paras = append(paras, s)
				}
				inPara = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inPara && inText {
				cur.Write(t)
			}
		}
	}
	return paras, nil
}
