// Formats database schema properties for display.

// Package property renders a single database property (select options,
// relation target, formula, rollup) into a display label.
package property

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/maruel/notiondoc/internal/workspace"
)

// Label is a property broken into display fields.
//
// String joins the fields into the single-line form used by the tree and
// numbered outline renderers; Markdown prints the fields separately.
type Label struct {
	Name        string
	Type        string
	Detail      string
	Description string
}

// String returns "<name> (<type>) <detail>, <description>".
func (l Label) String() string {
	var b strings.Builder
	b.WriteString(l.Name)
	b.WriteString(" (")
	b.WriteString(l.Type)
	b.WriteString(")")
	if l.Detail != "" {
		b.WriteString(" ")
		b.WriteString(l.Detail)
	}
	if l.Description != "" {
		b.WriteString(", ")
		b.WriteString(l.Description)
	}
	return b.String()
}

// Format returns the single-line label of prop.
func Format(prop *workspace.DatabaseProperty, databases []workspace.Database) string {
	return Describe(prop, databases).String()
}

// Describe breaks prop into display fields.
//
// databases is used to resolve relation targets by ID; unresolved targets
// are shown as their raw ID. Describe never fails.
func Describe(prop *workspace.DatabaseProperty, databases []workspace.Database) Label {
	l := Label{
		Name:        prop.Name,
		Type:        prop.Type,
		Description: strings.TrimSpace(prop.Description),
	}
	if l.Name == "" {
		l.Name = "Unnamed"
	}
	if l.Type == "" {
		l.Type = "unknown"
	}
	opts := prop.Options
	switch prop.Type {
	case workspace.PropertySelect, workspace.PropertyMultiSelect, workspace.PropertyStatus:
		var names []string
		if opts != nil {
			names = make([]string, 0, len(opts.Choices))
			for i := range opts.Choices {
				names = append(names, opts.Choices[i].Name)
			}
		}
		l.Detail = "[" + strings.Join(names, ", ") + "]"
	case workspace.PropertyRelation:
		if opts != nil && opts.Relation != nil {
			l.Detail = relationDetail(opts.Relation, databases)
		}
	case workspace.PropertyFormula:
		if opts != nil && opts.Formula != nil {
			l.Detail = "[" + CleanFormula(opts.Formula.Expression) + "]"
		}
	case workspace.PropertyRollup:
		if opts != nil && opts.Rollup != nil {
			l.Detail = rollupDetail(opts.Rollup)
		}
	default:
		if opts != nil && len(opts.Raw) > 0 {
			l.Detail = compactJSON(opts.Raw)
		}
	}
	return l
}

func relationDetail(r *workspace.RelationOptions, databases []workspace.Database) string {
	cardinality := "one-way"
	if r.Dual {
		cardinality = "two-way"
	}
	limit := "no limit"
	if r.Limit == 1 {
		limit = "limit: 1 page"
	}
	return "→ " + TargetName(r.TargetID, databases) + " (" + cardinality + ", " + limit + ")"
}

func rollupDetail(r *workspace.RollupOptions) string {
	var parts []string
	switch {
	case r.RelationProperty != "" && r.RollupProperty != "":
		parts = append(parts, r.RelationProperty+" → "+r.RollupProperty)
	case r.RelationProperty != "":
		parts = append(parts, r.RelationProperty)
	case r.RollupProperty != "":
		parts = append(parts, r.RollupProperty)
	}
	if r.Function != "" {
		parts = append(parts, r.Function)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TargetName resolves a relation target ID to a database or data source title.
func TargetName(id string, databases []workspace.Database) string {
	if id == "" {
		return "unknown"
	}
	for i := range databases {
		db := &databases[i]
		if db.ID == id {
			return db.DisplayTitle()
		}
		for j := range db.DataSources {
			if db.DataSources[j].ID == id {
				return db.DataSources[j].DisplayTitle()
			}
		}
	}
	return id
}

// propertyRef matches the internal property references embedded in formula
// expressions, e.g. {{notion:block_property:BtVS:00000000-...:8994905a-...}}.
var propertyRef = regexp.MustCompile(`\{\{notion:block_property:[^}]*\}\}`)

var whitespace = regexp.MustCompile(`\s+`)

// CleanFormula replaces property references with "[Property]" and collapses
// whitespace. The expression is never truncated.
func CleanFormula(expr string) string {
	expr = propertyRef.ReplaceAllString(expr, "[Property]")
	return strings.TrimSpace(whitespace.ReplaceAllString(expr, " "))
}

func compactJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
	}
	// Map keys are sorted by encoding/json so the output is deterministic.
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
