// Defines the workspace entities fetched from Notion.

// Package workspace holds the immutable entity model of a documented Notion
// workspace: pages, databases, data sources and their schema properties.
package workspace

import (
	"encoding/json"
	"time"
)

// ParentType identifies what kind of entity owns a page, database or data source.
type ParentType string

// Parent types.
const (
	ParentWorkspace  ParentType = "workspace"
	ParentPage       ParentType = "page"
	ParentDatabase   ParentType = "database"
	ParentDataSource ParentType = "data_source"
	ParentBlock      ParentType = "block"
)

// Parent is a reference to the owner of an entity.
type Parent struct {
	Type ParentType `json:"type"`
	ID   string     `json:"id,omitempty"`
}

// IsItemOwner reports whether the parent makes the child a database item.
func (p Parent) IsItemOwner() bool {
	return p.Type == ParentDatabase || p.Type == ParentDataSource
}

// Page is a Notion page, either standalone or a database item.
type Page struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	URL            string          `json:"url,omitempty"`
	CreatedTime    time.Time       `json:"created_time"`
	LastEditedTime time.Time       `json:"last_edited_time"`
	Parent         Parent          `json:"parent"`
	Properties     json.RawMessage `json:"properties,omitempty"`
}

// DisplayTitle returns the title, or "Untitled" when it is empty.
func (p *Page) DisplayTitle() string {
	if p.Title == "" {
		return "Untitled"
	}
	return p.Title
}

// Property types that carry options. Every other type is rendered opaquely.
const (
	PropertyTitle       = "title"
	PropertyText        = "rich_text"
	PropertyNumber      = "number"
	PropertySelect      = "select"
	PropertyMultiSelect = "multi_select"
	PropertyStatus      = "status"
	PropertyFormula     = "formula"
	PropertyRollup      = "rollup"
	PropertyRelation    = "relation"
)

// DatabaseProperty is one column of a database or data source schema.
type DatabaseProperty struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Description string           `json:"description,omitempty"`
	Options     *PropertyOptions `json:"options,omitempty"`
}

// PropertyOptions is the type-specific configuration of a property.
//
// Only the field matching the property type is populated. Raw keeps the
// configuration of types without a dedicated field.
type PropertyOptions struct {
	Choices  []Choice         `json:"choices,omitempty"`
	Relation *RelationOptions `json:"relation,omitempty"`
	Formula  *FormulaOptions  `json:"formula,omitempty"`
	Rollup   *RollupOptions   `json:"rollup,omitempty"`
	Raw      json.RawMessage  `json:"raw,omitempty"`
}

// Choice is a select, multi_select or status option.
type Choice struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// RelationOptions describes the target of a relation property.
type RelationOptions struct {
	// TargetID is a database ID (legacy API) or a data source ID.
	TargetID           string `json:"target_id"`
	Dual               bool   `json:"dual,omitempty"`
	SyncedPropertyName string `json:"synced_property_name,omitempty"`
	// Limit is the maximum number of related pages; 0 means unlimited.
	Limit int `json:"limit,omitempty"`
}

// FormulaOptions holds a formula expression as returned by the API.
type FormulaOptions struct {
	Expression string `json:"expression"`
}

// RollupOptions describes what a rollup aggregates.
type RollupOptions struct {
	RelationProperty string `json:"relation_property"`
	RollupProperty   string `json:"rollup_property"`
	Function         string `json:"function"`
}

// DataSource is a schema and item collection owned by a database.
type DataSource struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Properties     []DatabaseProperty `json:"properties"`
	Pages          []Page             `json:"pages,omitempty"`
	Parent         Parent             `json:"parent"`
	CreatedTime    time.Time          `json:"created_time"`
	LastEditedTime time.Time          `json:"last_edited_time"`
}

// DisplayTitle returns the title, then the name, then "Untitled".
func (d *DataSource) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	if d.Name != "" {
		return d.Name
	}
	return "Untitled"
}

// Database is a Notion database.
//
// Properties is populated for the legacy API shape, DataSources for the
// current one. They are never both meaningful for the same database.
type Database struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	URL            string             `json:"url,omitempty"`
	Description    string             `json:"description,omitempty"`
	CreatedTime    time.Time          `json:"created_time"`
	LastEditedTime time.Time          `json:"last_edited_time"`
	Properties     []DatabaseProperty `json:"properties"`
	DataSources    []DataSource       `json:"data_sources"`
	Parent         Parent             `json:"parent"`
}

// DisplayTitle returns the title, or "Untitled" when it is empty.
func (d *Database) DisplayTitle() string {
	if d.Title == "" {
		return "Untitled"
	}
	return d.Title
}

// Snapshot is the raw entity lists fetched from the API or loaded from disk.
type Snapshot struct {
	Pages     []Page     `json:"pages"`
	Databases []Database `json:"databases"`
}
