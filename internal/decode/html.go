// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package decode

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// HTMLDecoder extracts visible text from HTML. Block elements end a line and
// headings are rendered as Markdown headings so the segmenter finds them.
type HTMLDecoder struct{}

func (HTMLDecoder) Decode(_ context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: opening %s: %v", ErrDecode, path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return Result{}, fmt.Errorf("%w: parsing %s: %v", ErrDecode, path, err)
	}
	return Result{Text: norm.NFC.String(visibleText(doc)), ContentType: types.ContentTypeHTML}, nil
}

var headingLevel = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "li": true,
	"tr": true, "br": true, "pre": true, "blockquote": true, "table": true,
	"ul": true, "ol": true, "header": true, "footer": true, "title": true,
}

func visibleText(n *html.Node) string {
	var buf strings.Builder
	var line strings.Builder

	flush := func() {
		if s := strings.TrimSpace(line.String()); s != "" {
			buf.WriteString(s)
			buf.WriteString("\n")
		}
		line.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
			if lvl, ok := headingLevel[n.Data]; ok {
				flush()
				line.WriteString(strings.Repeat("#", lvl) + " ")
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					walk(c)
				}
				flush()
				return
			}
			if blockElements[n.Data] {
				flush()
				defer flush()
			}
		}

		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				if line.Len() > 0 && !strings.HasSuffix(line.String(), " ") {
					line.WriteString(" ")
				}
				line.WriteString(text)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	flush()
	return buf.String()
}
