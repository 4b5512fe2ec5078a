// Defines the forest of nodes rendered by every output format.

// Package tree reconstructs the page/database/data source hierarchy of a
// workspace from its flat entity lists.
package tree

import "github.com/maruel/notiondoc/internal/workspace"

// Kind is the type of a node.
type Kind string

// Node kinds. Section kinds are synthetic and only group children for display.
const (
	KindPage              Kind = "page"
	KindDatabase          Kind = "database"
	KindDataSource        Kind = "data-source"
	KindProperty          Kind = "property"
	KindPropertiesSection Kind = "properties-section"
	KindPagesSection      Kind = "pages-section"
	KindItemsSection      Kind = "items-section"
	// KindViewsSection is reserved; no builder emits it.
	KindViewsSection Kind = "views-section"
)

// IsSection reports whether k is a synthetic grouping kind.
func (k Kind) IsSection() bool {
	switch k {
	case KindPropertiesSection, KindPagesSection, KindItemsSection, KindViewsSection:
		return true
	}
	return false
}

// Section titles.
const (
	TitleProperties       = "Properties"
	TitleDataSourcePages  = "Data source pages"
	TitleLegacyProperties = "properties:"
	TitleLegacyItems      = "items:"
)

// Node is one entry of the forest.
//
// Exactly one of the entity pointers is set for entity kinds; none for
// sections. The pointers reference the Documentation the forest was built
// from and must be treated as read-only.
type Node struct {
	ID       string
	Title    string
	Kind     Kind
	Children []*Node

	Page       *workspace.Page
	Database   *workspace.Database
	DataSource *workspace.DataSource
	Property   *workspace.DatabaseProperty
	// Legacy is set on section nodes built from the legacy API shape.
	Legacy bool
}

// Forest is an ordered list of independent roots.
type Forest []*Node

// Walk calls fn for every node in depth-first order. depth is 1 for roots.
// Returning false from fn skips the node's children.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(f, 1)
}

// Count returns the total number of nodes.
func (f Forest) Count() int {
	n := 0
	f.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}
