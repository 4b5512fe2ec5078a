// Defines Notion API response types.

package notion

import (
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PaginatedResponse is the common structure for paginated API responses.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// SearchResponse is the response from the search endpoint.
type SearchResponse = PaginatedResponse[SearchResult]

// QueryResponse is the response from the database and data source query
// endpoints.
type QueryResponse = PaginatedResponse[Page]

// SearchResult represents an item in search results.
//
// Pages, databases and data sources share this structure; Object tells which
// fields are populated.
type SearchResult struct {
	Object         string    `json:"object"` // "page", "database" or "data_source"
	ID             string    `json:"id"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`
	Parent         Parent    `json:"parent"`
	URL            string    `json:"url,omitempty"`
	Archived       bool      `json:"archived,omitempty"`
	InTrash        bool      `json:"in_trash,omitempty"`

	// For pages: property values. For databases: schema definitions.
	PropertiesRaw json.RawMessage `json:"properties,omitempty"`

	// For databases and data sources only.
	Title       []RichText `json:"title,omitempty"`
	Description []RichText `json:"description,omitempty"`
}

// Page returns the result as a page.
func (r *SearchResult) Page() Page {
	return Page{
		Object:         r.Object,
		ID:             r.ID,
		CreatedTime:    r.CreatedTime,
		LastEditedTime: r.LastEditedTime,
		Parent:         r.Parent,
		URL:            r.URL,
		Archived:       r.Archived,
		InTrash:        r.InTrash,
		Properties:     r.PropertiesRaw,
	}
}

// Parent represents the parent of a page, database, data source or block.
type Parent struct {
	Type         string `json:"type"` // "database_id", "data_source_id", "page_id", "workspace", "block_id"
	DatabaseID   string `json:"database_id,omitempty"`
	DataSourceID string `json:"data_source_id,omitempty"`
	PageID       string `json:"page_id,omitempty"`
	BlockID      string `json:"block_id,omitempty"`
	Workspace    bool   `json:"workspace,omitempty"`
}

// Database represents a Notion database.
//
// With the legacy API version the schema is in Properties. With the data
// source API version, Properties is empty and DataSources lists the sources
// holding the schema.
type Database struct {
	Object         string                                    `json:"object"`
	ID             string                                    `json:"id"`
	CreatedTime    time.Time                                 `json:"created_time"`
	LastEditedTime time.Time                                 `json:"last_edited_time"`
	Title          []RichText                                `json:"title"`
	Description    []RichText                                `json:"description"`
	Properties     *orderedmap.OrderedMap[string, DBProperty] `json:"properties,omitempty"`
	DataSources    []DataSourceRef                           `json:"data_sources,omitempty"`
	Parent         Parent                                    `json:"parent"`
	URL            string                                    `json:"url"`
	Archived       bool                                      `json:"archived"`
	InTrash        bool                                      `json:"in_trash"`
	IsInline       bool                                      `json:"is_inline"`
}

// DataSourceRef is a data source listed by its database.
type DataSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DataSource represents a Notion data source: the schema and rows of a
// database with the data source API version.
type DataSource struct {
	Object         string                                    `json:"object"`
	ID             string                                    `json:"id"`
	CreatedTime    time.Time                                 `json:"created_time"`
	LastEditedTime time.Time                                 `json:"last_edited_time"`
	Title          []RichText                                `json:"title"`
	Description    []RichText                                `json:"description"`
	Properties     *orderedmap.OrderedMap[string, DBProperty] `json:"properties"`
	Parent         Parent                                    `json:"parent"`
	DatabaseParent *Parent                                   `json:"database_parent,omitempty"`
	Archived       bool                                      `json:"archived"`
	InTrash        bool                                      `json:"in_trash"`
}

// DBProperty represents a property definition in a database schema.
type DBProperty struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`

	// Type-specific configuration.
	Select      *SelectConfig   `json:"select,omitempty"`
	MultiSelect *SelectConfig   `json:"multi_select,omitempty"`
	Status      *StatusConfig   `json:"status,omitempty"`
	Formula     *FormulaConfig  `json:"formula,omitempty"`
	Relation    *RelationConfig `json:"relation,omitempty"`
	Rollup      *RollupConfig   `json:"rollup,omitempty"`

	// Config is the raw configuration object keyed by Type, kept for types
	// without a dedicated field.
	Config json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps the raw configuration.
func (p *DBProperty) UnmarshalJSON(data []byte) error {
	type alias DBProperty
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	a.Config = fields[a.Type]
	*p = DBProperty(a)
	return nil
}

// SelectConfig defines select/multi_select property configuration.
type SelectConfig struct {
	Options []SelectOption `json:"options"`
}

// SelectOption represents a select or status option.
type SelectOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// StatusConfig defines status property configuration.
type StatusConfig struct {
	Options []SelectOption `json:"options"`
	Groups  []StatusGroup  `json:"groups"`
}

// StatusGroup represents a group of status options.
type StatusGroup struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	OptionIDs []string `json:"option_ids"`
}

// FormulaConfig defines formula property configuration.
type FormulaConfig struct {
	Expression string `json:"expression"`
}

// RelationConfig defines relation property configuration.
type RelationConfig struct {
	DatabaseID     string              `json:"database_id"`
	DataSourceID   string              `json:"data_source_id,omitempty"`
	Type           string              `json:"type"` // "single_property" or "dual_property"
	SingleProperty *struct{}           `json:"single_property,omitempty"`
	DualProperty   *DualPropertyConfig `json:"dual_property,omitempty"`
}

// DualPropertyConfig defines dual property relation configuration.
type DualPropertyConfig struct {
	SyncedPropertyName string `json:"synced_property_name"`
	SyncedPropertyID   string `json:"synced_property_id"`
}

// RollupConfig defines rollup property configuration.
type RollupConfig struct {
	RelationPropertyName string `json:"relation_property_name"`
	RelationPropertyID   string `json:"relation_property_id"`
	RollupPropertyName   string `json:"rollup_property_name"`
	RollupPropertyID     string `json:"rollup_property_id"`
	Function             string `json:"function"` // count, count_values, sum, average, etc.
}

// Page represents a Notion page (including database rows).
//
// Property values are kept raw; only the title is decoded.
type Page struct {
	Object         string          `json:"object"`
	ID             string          `json:"id"`
	CreatedTime    time.Time       `json:"created_time"`
	LastEditedTime time.Time       `json:"last_edited_time"`
	Parent         Parent          `json:"parent"`
	Archived       bool            `json:"archived"`
	InTrash        bool            `json:"in_trash"`
	Properties     json.RawMessage `json:"properties"`
	URL            string          `json:"url"`
}

// RichText represents formatted text content.
type RichText struct {
	Type      string       `json:"type"` // "text", "mention", "equation"
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text"`
	Href      *string      `json:"href,omitempty"`
}

// TextContent represents plain text content.
type TextContent struct {
	Content string `json:"content"`
}

// Block represents a Notion block. Only the fields needed to walk up to the
// owning page are decoded.
type Block struct {
	Object      string `json:"object"`
	ID          string `json:"id"`
	Parent      Parent `json:"parent"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`
}

// User represents a Notion user or bot.
type User struct {
	Object string      `json:"object"`
	ID     string      `json:"id"`
	Name   string      `json:"name,omitempty"`
	Type   string      `json:"type,omitempty"` // "person" or "bot"
	Bot    *BotDetails `json:"bot,omitempty"`
}

// BotDetails contains bot-specific details.
type BotDetails struct {
	WorkspaceName string `json:"workspace_name,omitempty"`
}
