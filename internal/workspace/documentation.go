// Builds the immutable documentation aggregate.

package workspace

import (
	"fmt"
	"slices"
	"time"
)

// Options selects how much detail the aggregate carries.
type Options struct {
	// IncludeSchema keeps database properties and data sources.
	IncludeSchema bool
	// IncludeItems keeps pages owned by databases and data sources.
	IncludeItems bool
}

// Summary holds the counts reported at the top of the documents.
type Summary struct {
	TotalPages      int `json:"total_pages"`
	TotalDatabases  int `json:"total_databases"`
	TotalProperties int `json:"total_properties"`
}

// Documentation is the aggregate root rendered by every output format.
//
// It must not be modified after New returns.
type Documentation struct {
	GeneratedAt   time.Time  `json:"generated_at"`
	WorkspaceName string     `json:"workspace_name"`
	Pages         []Page     `json:"pages"`
	Databases     []Database `json:"databases"`
	Summary       Summary    `json:"summary"`
	IncludeSchema bool       `json:"include_schema"`
	IncludeItems  bool       `json:"include_items"`

	// owners maps data source IDs to their database, including data sources
	// dropped with the schema.
	owners map[string]string
}

// New builds the aggregate from a snapshot.
//
// The snapshot is deep-copied. IncludeSchema=false empties every database's
// properties and data sources; IncludeItems=false drops database-owned pages.
func New(name string, snap Snapshot, opts Options, now time.Time) *Documentation {
	d := &Documentation{
		GeneratedAt:   now,
		WorkspaceName: name,
		Pages:         make([]Page, 0, len(snap.Pages)),
		Databases:     make([]Database, 0, len(snap.Databases)),
		IncludeSchema: opts.IncludeSchema,
		IncludeItems:  opts.IncludeItems,
		owners:        make(map[string]string),
	}
	for i := range snap.Pages {
		if !opts.IncludeItems && snap.Pages[i].Parent.IsItemOwner() {
			continue
		}
		d.Pages = append(d.Pages, clonePage(&snap.Pages[i]))
	}
	for i := range snap.Databases {
		db := cloneDatabase(&snap.Databases[i])
		for j := range db.DataSources {
			d.owners[db.DataSources[j].ID] = db.ID
		}
		if !opts.IncludeSchema {
			db.Properties = nil
			db.DataSources = nil
		}
		if !opts.IncludeItems {
			for j := range db.DataSources {
				db.DataSources[j].Pages = nil
			}
		}
		d.Databases = append(d.Databases, db)
	}
	d.Summary = d.summarize()
	return d
}

// DataSourceOwner returns the ID of the database owning the data source id,
// or "" when it is unknown. It also resolves data sources that were dropped
// because the schema was not included.
func (d *Documentation) DataSourceOwner(id string) string {
	return d.owners[id]
}

// IsEmpty reports whether there is nothing to render.
func (d *Documentation) IsEmpty() bool {
	return len(d.Pages) == 0 && len(d.Databases) == 0
}

// HasDataSources reports whether any database uses the data source shape.
func (d *Documentation) HasDataSources() bool {
	for i := range d.Databases {
		if len(d.Databases[i].DataSources) > 0 {
			return true
		}
	}
	return false
}

// IntegrityWarnings returns the data problems found in the aggregate.
//
// None of them prevent rendering.
func (d *Documentation) IntegrityWarnings() []string {
	var out []string
	seen := make(map[string]string)
	check := func(kind, id string) {
		if id == "" {
			out = append(out, fmt.Sprintf("%s without an ID", kind))
			return
		}
		if prev, ok := seen[id]; ok {
			out = append(out, fmt.Sprintf("duplicate ID %s (%s and %s)", id, prev, kind))
			return
		}
		seen[id] = kind
	}
	for i := range d.Pages {
		check("page", d.Pages[i].ID)
	}
	for i := range d.Databases {
		db := &d.Databases[i]
		check("database", db.ID)
		if len(db.Properties) > 0 && len(db.DataSources) > 0 {
			out = append(out, fmt.Sprintf("database %s has both legacy properties and data sources; only data source properties are counted", db.ID))
		}
		for j := range db.DataSources {
			check("data source", db.DataSources[j].ID)
		}
	}
	return out
}

func (d *Documentation) summarize() Summary {
	s := Summary{TotalDatabases: len(d.Databases)}
	pages := make(map[string]struct{}, len(d.Pages))
	for i := range d.Pages {
		pages[d.Pages[i].ID] = struct{}{}
	}
	for i := range d.Databases {
		db := &d.Databases[i]
		if len(db.DataSources) == 0 {
			s.TotalProperties += len(db.Properties)
		}
		for j := range db.DataSources {
			ds := &db.DataSources[j]
			s.TotalProperties += len(ds.Properties)
			for k := range ds.Pages {
				pages[ds.Pages[k].ID] = struct{}{}
			}
		}
	}
	s.TotalPages = len(pages)
	return s
}

func clonePage(p *Page) Page {
	c := *p
	c.Properties = slices.Clone(p.Properties)
	return c
}

func cloneProperties(in []DatabaseProperty) []DatabaseProperty {
	if in == nil {
		return nil
	}
	out := make([]DatabaseProperty, len(in))
	for i := range in {
		out[i] = in[i]
		if o := in[i].Options; o != nil {
			c := *o
			c.Choices = slices.Clone(o.Choices)
			c.Raw = slices.Clone(o.Raw)
			if o.Relation != nil {
				r := *o.Relation
				c.Relation = &r
			}
			if o.Formula != nil {
				f := *o.Formula
				c.Formula = &f
			}
			if o.Rollup != nil {
				r := *o.Rollup
				c.Rollup = &r
			}
			out[i].Options = &c
		}
	}
	return out
}

func cloneDatabase(db *Database) Database {
	c := *db
	c.Properties = cloneProperties(db.Properties)
	if db.DataSources != nil {
		c.DataSources = make([]DataSource, len(db.DataSources))
		for i := range db.DataSources {
			ds := db.DataSources[i]
			ds.Properties = cloneProperties(ds.Properties)
			if ds.Pages != nil {
				pages := make([]Page, len(ds.Pages))
				for j := range ds.Pages {
					pages[j] = clonePage(&ds.Pages[j])
				}
				ds.Pages = pages
			}
			c.DataSources[i] = ds
		}
	}
	return c
}
