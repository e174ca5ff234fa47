// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package equation

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// indexContextRunes bounds the context echoed into the LaTeX index.
const indexContextRunes = 100

// WriteLaTeXIndex writes eqs as a LaTeX file of equation environments, each
// preceded by a comment naming its ID and section.
func WriteLaTeXIndex(w io.Writer, eqs []types.Equation) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "% Canon equation index")
	fmt.Fprintln(bw, "% Generated automatically")
	fmt.Fprintln(bw)

	for _, eq := range eqs {
		ctx := []rune(eq.Context)
		if len(ctx) > indexContextRunes {
			ctx = ctx[:indexContextRunes]
		}
		fmt.Fprintf(bw, "%% %s (%s)\n", eq.ID, eq.Section)
		fmt.Fprintln(bw, `\begin{equation}`)
		fmt.Fprintln(bw, eq.Formula)
		fmt.Fprintln(bw, `\end{equation}`)
		fmt.Fprintf(bw, "%% Context: %s...\n\n", commentSafe(string(ctx)))
	}
	return bw.Flush()
}

// commentSafe keeps multi-line context inside a single LaTeX comment.
func commentSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
