// Converts Notion API objects into workspace entities.

package notion

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/maruel/notiondoc/internal/workspace"
)

// NormalizeID returns the canonical dashed lowercase form of a Notion ID.
// Identifiers that are not UUIDs are returned trimmed.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return id
}

// richTextToPlain converts rich text to plain text.
func richTextToPlain(rt []RichText) string {
	parts := make([]string, 0, len(rt))
	for i := range rt {
		parts = append(parts, rt[i].PlainText)
	}
	return strings.Join(parts, "")
}

// pageTitle extracts the title from a page's raw properties.
func pageTitle(raw json.RawMessage) string {
	var props map[string]struct {
		Type  string     `json:"type"`
		Title []RichText `json:"title"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &props) != nil {
		return "Untitled"
	}
	for _, p := range props {
		if p.Type == "title" {
			if t := strings.TrimSpace(richTextToPlain(p.Title)); t != "" {
				return t
			}
		}
	}
	return "Untitled"
}

func convertParent(p Parent) workspace.Parent {
	switch p.Type {
	case "workspace":
		return workspace.Parent{Type: workspace.ParentWorkspace}
	case "page_id":
		return workspace.Parent{Type: workspace.ParentPage, ID: NormalizeID(p.PageID)}
	case "database_id":
		return workspace.Parent{Type: workspace.ParentDatabase, ID: NormalizeID(p.DatabaseID)}
	case "data_source_id":
		return workspace.Parent{Type: workspace.ParentDataSource, ID: NormalizeID(p.DataSourceID)}
	case "block_id":
		return workspace.Parent{Type: workspace.ParentBlock, ID: NormalizeID(p.BlockID)}
	default:
		return workspace.Parent{Type: workspace.ParentType(p.Type)}
	}
}

func convertPage(p *Page) workspace.Page {
	return workspace.Page{
		ID:             NormalizeID(p.ID),
		Title:          pageTitle(p.Properties),
		URL:            p.URL,
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
		Parent:         convertParent(p.Parent),
		Properties:     p.Properties,
	}
}

func convertDatabase(db *Database) workspace.Database {
	return workspace.Database{
		ID:             NormalizeID(db.ID),
		Title:          strings.TrimSpace(richTextToPlain(db.Title)),
		URL:            db.URL,
		Description:    strings.TrimSpace(richTextToPlain(db.Description)),
		CreatedTime:    db.CreatedTime,
		LastEditedTime: db.LastEditedTime,
		Properties:     convertProperties(db.Properties),
		Parent:         convertParent(db.Parent),
	}
}

// convertDataSource converts ds listed as ref by the database databaseID.
func convertDataSource(ds *DataSource, ref DataSourceRef, databaseID string) workspace.DataSource {
	out := workspace.DataSource{
		ID:             NormalizeID(ds.ID),
		Name:           ref.Name,
		Title:          strings.TrimSpace(richTextToPlain(ds.Title)),
		Description:    strings.TrimSpace(richTextToPlain(ds.Description)),
		Properties:     convertProperties(ds.Properties),
		Parent:         convertParent(ds.Parent),
		CreatedTime:    ds.CreatedTime,
		LastEditedTime: ds.LastEditedTime,
	}
	if out.ID == "" {
		out.ID = NormalizeID(ref.ID)
	}
	if out.Parent.Type != workspace.ParentDatabase {
		out.Parent = workspace.Parent{Type: workspace.ParentDatabase, ID: NormalizeID(databaseID)}
	}
	return out
}

// convertProperties keeps the schema order returned by the API.
func convertProperties(props *orderedmap.OrderedMap[string, DBProperty]) []workspace.DatabaseProperty {
	if props == nil || props.Len() == 0 {
		return nil
	}
	out := make([]workspace.DatabaseProperty, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, convertProperty(pair.Key, &pair.Value))
	}
	return out
}

func convertProperty(name string, p *DBProperty) workspace.DatabaseProperty {
	out := workspace.DatabaseProperty{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Description: p.Description,
	}
	if out.Name == "" {
		out.Name = name
	}
	switch p.Type {
	case workspace.PropertySelect:
		if p.Select != nil {
			out.Options = &workspace.PropertyOptions{Choices: convertChoices(p.Select.Options)}
		}
	case workspace.PropertyMultiSelect:
		if p.MultiSelect != nil {
			out.Options = &workspace.PropertyOptions{Choices: convertChoices(p.MultiSelect.Options)}
		}
	case workspace.PropertyStatus:
		if p.Status != nil {
			out.Options = &workspace.PropertyOptions{Choices: convertChoices(p.Status.Options)}
		}
	case workspace.PropertyRelation:
		if r := p.Relation; r != nil {
			target := r.DataSourceID
			if target == "" {
				target = r.DatabaseID
			}
			rel := &workspace.RelationOptions{TargetID: NormalizeID(target), Dual: r.Type == "dual_property"}
			if r.DualProperty != nil {
				rel.SyncedPropertyName = r.DualProperty.SyncedPropertyName
			}
			out.Options = &workspace.PropertyOptions{Relation: rel}
		}
	case workspace.PropertyFormula:
		if p.Formula != nil {
			out.Options = &workspace.PropertyOptions{Formula: &workspace.FormulaOptions{Expression: p.Formula.Expression}}
		}
	case workspace.PropertyRollup:
		if r := p.Rollup; r != nil {
			out.Options = &workspace.PropertyOptions{Rollup: &workspace.RollupOptions{
				RelationProperty: r.RelationPropertyName,
				RollupProperty:   r.RollupPropertyName,
				Function:         r.Function,
			}}
		}
	default:
		if raw := bytes.TrimSpace(p.Config); len(raw) > 0 && !bytes.Equal(raw, []byte("{}")) && !bytes.Equal(raw, []byte("null")) {
			out.Options = &workspace.PropertyOptions{Raw: json.RawMessage(raw)}
		}
	}
	return out
}

func convertChoices(opts []SelectOption) []workspace.Choice {
	out := make([]workspace.Choice, 0, len(opts))
	for _, o := range opts {
		out = append(out, workspace.Choice{ID: o.ID, Name: o.Name, Color: o.Color})
	}
	return out
}
