// Renders the numbered outline.

package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

type numberedRenderer struct{}

func (numberedRenderer) Format() Format    { return FormatNumbered }
func (numberedRenderer) Extension() string { return "txt" }

// Render writes one "<label> <title>" line per node, e.g. "1.2.1 Tasks
// database". Children keep forest order.
func (numberedRenderer) Render(w io.Writer, _ *workspace.Documentation, forest tree.Forest) error {
	_, err := io.WriteString(w, NumberedOutline(forest))
	return err
}

// NumberedOutline returns the numbered outline of forest, one node per line.
func NumberedOutline(forest tree.Forest) string {
	if len(forest) == 0 {
		return NoContent + "\n"
	}
	var b strings.Builder
	writeNumbered(&b, forest, "")
	return b.String()
}

func writeNumbered(b *strings.Builder, nodes []*tree.Node, prefix string) {
	for i, n := range nodes {
		label := outlineLabel(prefix, i)
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(n.Title)
		b.WriteString("\n")
		writeNumbered(b, n.Children, label)
	}
}

// outlineLabel returns the dotted label of the i-th child of prefix.
func outlineLabel(prefix string, i int) string {
	s := strconv.Itoa(i + 1)
	if prefix == "" {
		return s
	}
	return prefix + "." + s
}
