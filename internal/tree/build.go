// Reconstructs the workspace forest from flat entity lists.

package tree

import (
	"slices"

	"github.com/maruel/notiondoc/internal/property"
	"github.com/maruel/notiondoc/internal/workspace"
)

// RootOrder is the display policy applied to root nodes.
type RootOrder int

const (
	// RootOrderReverse lists the last discovered root first.
	RootOrderReverse RootOrder = iota
	// RootOrderDiscovery keeps pages first, then databases, in input order.
	RootOrderDiscovery
)

// Options configures Build.
type Options struct {
	RootOrder RootOrder
}

// pending is a page or database node waiting to be attached to its parent.
type pending struct {
	node     *Node
	parentID string
}

type builder struct {
	doc      *workspace.Documentation
	index    map[string]*Node
	parent   map[*Node]*Node
	sections map[string]*Node
}

// Build reconstructs the forest of doc.
//
// Build never fails: a node whose parent cannot be found, or whose parent
// would create a cycle, becomes a root. The Documentation is not modified.
func Build(doc *workspace.Documentation, opts Options) Forest {
	b := &builder{
		doc:      doc,
		index:    make(map[string]*Node),
		parent:   make(map[*Node]*Node),
		sections: make(map[string]*Node),
	}

	// Items fetched through a data source are also returned by search; only
	// those copies are skipped from the page list.
	fetched := make(map[string]bool)
	for i := range doc.Databases {
		db := &doc.Databases[i]
		for j := range db.DataSources {
			for k := range db.DataSources[j].Pages {
				fetched[db.DataSources[j].Pages[k].ID] = true
			}
		}
	}

	var order []pending
	for i := range doc.Pages {
		p := &doc.Pages[i]
		if p.Parent.IsItemOwner() && fetched[p.ID] {
			continue
		}
		n := b.pageNode(p)
		order = append(order, pending{node: n, parentID: p.Parent.ID})
	}
	legacy := make(map[string]*Node)
	current := make(map[string]*Node)
	for i := range doc.Databases {
		db := &doc.Databases[i]
		n := &Node{ID: db.ID, Title: db.DisplayTitle() + " database", Kind: KindDatabase, Database: db}
		b.register(n)
		order = append(order, pending{node: n, parentID: db.Parent.ID})
		if len(db.DataSources) > 0 {
			current[db.ID] = n
			for j := range db.DataSources {
				ds := b.dataSourceNode(&db.DataSources[j])
				n.Children = append(n.Children, ds)
				b.parent[ds] = n
				current[ds.ID] = ds
			}
			continue
		}
		legacy[db.ID] = n
		if doc.IncludeSchema && len(db.Properties) > 0 {
			sec := b.propertiesSection(db.ID, db.Properties, true)
			n.Children = append(n.Children, sec)
			b.parent[sec] = n
		}
	}

	var roots []*Node
	for _, p := range order {
		n := p.node
		if doc.IncludeItems && n.Page != nil && n.Page.Parent.IsItemOwner() {
			if owner, isLegacy := b.itemOwner(n.Page.Parent, legacy, current); owner != nil && !b.isAncestor(n, owner) {
				sec := b.itemSection(owner, isLegacy)
				sec.Children = append(sec.Children, n)
				b.parent[n] = sec
				continue
			}
		}
		if parent, ok := b.index[p.parentID]; ok && p.parentID != "" && !b.isAncestor(n, parent) {
			parent.Children = append(parent.Children, n)
			b.parent[n] = parent
			continue
		}
		roots = append(roots, n)
	}
	if opts.RootOrder == RootOrderReverse {
		slices.Reverse(roots)
	}
	return Forest(roots)
}

// itemOwner returns the node grouping a database item owned by parent, or
// nil when the owner is not in the forest. A data source dropped with the
// schema is replaced by its owning database.
func (b *builder) itemOwner(parent workspace.Parent, legacy, current map[string]*Node) (owner *Node, isLegacy bool) {
	if db, ok := legacy[parent.ID]; ok {
		return db, true
	}
	if n, ok := current[parent.ID]; ok {
		return n, false
	}
	if parent.Type == workspace.ParentDataSource {
		if n := b.index[b.doc.DataSourceOwner(parent.ID)]; n != nil && n.Kind == KindDatabase {
			return n, false
		}
	}
	return nil, false
}

// itemSection returns the item section of owner: "items:" for legacy
// databases, "Data source pages" otherwise.
func (b *builder) itemSection(owner *Node, isLegacy bool) *Node {
	if isLegacy {
		return b.section(owner, owner.ID+"#items", TitleLegacyItems, KindItemsSection, true)
	}
	return b.section(owner, owner.ID+"#pages", TitleDataSourcePages, KindPagesSection, false)
}

// section returns the section id of owner, appending it on first use.
func (b *builder) section(owner *Node, id, title string, kind Kind, legacy bool) *Node {
	if sec, ok := b.sections[id]; ok {
		return sec
	}
	sec := &Node{ID: id, Title: title, Kind: kind, Legacy: legacy}
	b.sections[id] = sec
	owner.Children = append(owner.Children, sec)
	b.parent[sec] = owner
	return sec
}

// register records n so that later nodes can use it as their parent.
// The first node registered under an ID wins.
func (b *builder) register(n *Node) {
	if n.ID == "" {
		return
	}
	if _, ok := b.index[n.ID]; !ok {
		b.index[n.ID] = n
	}
}

// isAncestor reports whether n is candidate or one of its ancestors.
func (b *builder) isAncestor(n, candidate *Node) bool {
	for c := candidate; c != nil; c = b.parent[c] {
		if c == n {
			return true
		}
	}
	return false
}

func (b *builder) pageNode(p *workspace.Page) *Node {
	title := "Untitled Page"
	if p.Title != "" {
		title = p.Title + " page"
	}
	n := &Node{ID: p.ID, Title: title, Kind: KindPage, Page: p}
	b.register(n)
	return n
}

func (b *builder) dataSourceNode(ds *workspace.DataSource) *Node {
	n := &Node{ID: ds.ID, Title: ds.DisplayTitle() + " data source", Kind: KindDataSource, DataSource: ds}
	b.register(n)
	if b.doc.IncludeSchema && len(ds.Properties) > 0 {
		sec := b.propertiesSection(ds.ID, ds.Properties, false)
		n.Children = append(n.Children, sec)
		b.parent[sec] = n
	}
	if b.doc.IncludeItems && len(ds.Pages) > 0 {
		sec := b.section(n, ds.ID+"#pages", TitleDataSourcePages, KindPagesSection, false)
		for i := range ds.Pages {
			pn := b.pageNode(&ds.Pages[i])
			sec.Children = append(sec.Children, pn)
			b.parent[pn] = sec
		}
	}
	return n
}

// propertiesSection lists props last-defined first. props is read, never
// reordered in place.
func (b *builder) propertiesSection(ownerID string, props []workspace.DatabaseProperty, legacy bool) *Node {
	title := TitleProperties
	if legacy {
		title = TitleLegacyProperties
	}
	sec := &Node{ID: ownerID + "#properties", Title: title, Kind: KindPropertiesSection, Legacy: legacy}
	for i := len(props) - 1; i >= 0; i-- {
		p := &props[i]
		id := p.ID
		if id == "" {
			id = ownerID + "#" + p.Name
		}
		sec.Children = append(sec.Children, &Node{
			ID:       id,
			Title:    property.Format(p, b.doc.Databases),
			Kind:     KindProperty,
			Property: p,
		})
	}
	return sec
}
