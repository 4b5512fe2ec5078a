// Renders the ASCII tree map.

package render

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

type asciiRenderer struct{}

func (asciiRenderer) Format() Format    { return FormatTree }
func (asciiRenderer) Extension() string { return "txt" }

// Render writes a summary header followed by the forest drawn with box
// connectors. Roots keep forest order; siblings are sorted.
func (asciiRenderer) Render(w io.Writer, doc *workspace.Documentation, forest tree.Forest) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s workspace map\n", workspaceTitle(doc))
	fmt.Fprintf(&b, "Generated: %s\n", formatTime(doc.GeneratedAt))
	fmt.Fprintf(&b, "Total Pages: %d\n", doc.Summary.TotalPages)
	fmt.Fprintf(&b, "Total Databases: %d\n", doc.Summary.TotalDatabases)
	fmt.Fprintf(&b, "Total Properties: %s\n\n", totalProperties(doc))
	if len(forest) == 0 {
		b.WriteString(NoContent + "\n")
	} else {
		writeASCII(&b, forest, "")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeASCII(b *strings.Builder, nodes []*tree.Node, prefix string) {
	for i, n := range nodes {
		connector, next := "├── ", "│   "
		if i == len(nodes)-1 {
			connector, next = "└── ", "    "
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(icon(n.Kind))
		b.WriteString(" ")
		b.WriteString(n.Title)
		b.WriteString("\n")
		writeASCII(b, sortedChildren(n), prefix+next)
	}
}

func icon(k tree.Kind) string {
	switch k {
	case tree.KindPage:
		return "📄"
	case tree.KindDatabase:
		return "🗃️"
	case tree.KindDataSource:
		return "🗂️"
	case tree.KindPropertiesSection:
		return "📋"
	case tree.KindItemsSection:
		return "📁"
	case tree.KindPagesSection:
		return "📑"
	case tree.KindProperty:
		return "🔹"
	default:
		return "•"
	}
}

// sortedChildren returns a sorted copy of n's children: properties sections
// first, then pages and items sections, then everything else. Pages sort
// before databases, then by case-insensitive title.
func sortedChildren(n *tree.Node) []*tree.Node {
	out := slices.Clone(n.Children)
	slices.SortStableFunc(out, compareSiblings)
	return out
}

func compareSiblings(a, b *tree.Node) int {
	if c := cmp.Compare(siblingRank(a.Kind), siblingRank(b.Kind)); c != 0 {
		return c
	}
	if a.Kind != b.Kind {
		if c := cmp.Compare(entityRank(a.Kind), entityRank(b.Kind)); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
		return c
	}
	return cmp.Compare(a.Title, b.Title)
}

func siblingRank(k tree.Kind) int {
	switch k {
	case tree.KindPropertiesSection:
		return 0
	case tree.KindItemsSection, tree.KindPagesSection:
		return 1
	default:
		return 2
	}
}

func entityRank(k tree.Kind) int {
	switch k {
	case tree.KindPage:
		return 0
	case tree.KindDatabase:
		return 1
	default:
		return 2
	}
}
