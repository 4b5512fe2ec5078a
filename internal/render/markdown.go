// Renders the Markdown documentation.

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/maruel/notiondoc/internal/property"
	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

type markdownRenderer struct{}

func (markdownRenderer) Format() Format    { return FormatMarkdown }
func (markdownRenderer) Extension() string { return "md" }

// Render writes a heading per node, with "#" repeated by depth, followed by
// the node metadata. Properties are listed as bullets under their section.
func (markdownRenderer) Render(w io.Writer, doc *workspace.Documentation, forest tree.Forest) error {
	blocks := []string{
		"# " + workspaceTitle(doc) + " Workspace Documentation",
		"Generated: " + formatTime(doc.GeneratedAt),
		"## Summary\n\n" + strings.Join([]string{
			fmt.Sprintf("- Total Pages: %d", doc.Summary.TotalPages),
			fmt.Sprintf("- Total Databases: %d", doc.Summary.TotalDatabases),
			"- Total Properties: " + totalProperties(doc),
		}, "\n"),
		"---",
	}
	if len(forest) == 0 {
		blocks = append(blocks, NoContent)
	}
	forest.Walk(func(n *tree.Node, depth int) bool {
		if n.Kind == tree.KindProperty {
			return false
		}
		block := strings.Repeat("#", depth) + " " + markdownTitle(n)
		if meta := markdownMetadata(n); len(meta) > 0 {
			block += "\n\n" + strings.Join(meta, "\n")
		}
		blocks = append(blocks, block)
		var props []string
		for _, c := range n.Children {
			if c.Kind == tree.KindProperty && c.Property != nil {
				props = append(props, propertyBullet(property.Describe(c.Property, doc.Databases)))
			}
		}
		if len(props) > 0 {
			blocks = append(blocks, strings.Join(props, "\n"))
		}
		return true
	})
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n")
	return err
}

func markdownTitle(n *tree.Node) string {
	switch n.Kind {
	case tree.KindPropertiesSection:
		return "Properties"
	case tree.KindItemsSection:
		return "Database pages"
	case tree.KindPagesSection:
		return tree.TitleDataSourcePages
	default:
		return n.Title
	}
}

func markdownMetadata(n *tree.Node) []string {
	switch {
	case n.Page != nil:
		p := n.Page
		return []string{
			"- **ID:** `" + p.ID + "`",
			"- **URL:** " + orUnknown(p.URL),
			"- **Created:** " + formatTime(p.CreatedTime),
			"- **Last Edited:** " + formatTime(p.LastEditedTime),
			"- **Parent:** " + parentLabel(p.Parent),
		}
	case n.Database != nil:
		db := n.Database
		out := []string{
			"- **ID:** `" + db.ID + "`",
			"- **URL:** " + orUnknown(db.URL),
			"- **Created:** " + formatTime(db.CreatedTime),
			"- **Last Edited:** " + formatTime(db.LastEditedTime),
			"- **Parent:** " + parentLabel(db.Parent),
		}
		if db.Description != "" {
			out = append(out, "- **Description:** "+db.Description)
		}
		return out
	case n.DataSource != nil:
		ds := n.DataSource
		out := []string{
			"- **ID:** `" + ds.ID + "`",
			"- **Database:** `" + orUnknown(ds.Parent.ID) + "`",
			"- **Created:** " + formatTime(ds.CreatedTime),
			"- **Last Edited:** " + formatTime(ds.LastEditedTime),
		}
		if ds.Description != "" {
			out = append(out, "- **Description:** "+ds.Description)
		}
		return out
	}
	return nil
}

// propertyBullet renders "- **Name** (`type`) detail" with the description
// as a nested bullet.
func propertyBullet(l property.Label) string {
	s := "- **" + l.Name + "** (`" + l.Type + "`)"
	if l.Detail != "" {
		s += " " + l.Detail
	}
	if l.Description != "" {
		s += "\n  - Description: " + l.Description
	}
	return s
}

func parentLabel(p workspace.Parent) string {
	switch {
	case p.Type == "":
		return "unknown"
	case p.ID == "":
		return string(p.Type)
	default:
		return string(p.Type) + " `" + p.ID + "`"
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
