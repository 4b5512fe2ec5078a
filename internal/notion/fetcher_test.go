// Tests for the fetcher and API conversion.

package notion

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/maruel/notiondoc/internal/workspace"
)

type recorder struct {
	NullProgress
	warnings []string
	stats    *FetchStats
}

func (r *recorder) OnWarning(msg string) {
	r.warnings = append(r.warnings, msg)
}

func (r *recorder) OnComplete(stats FetchStats) {
	r.stats = &stats
}

func titleProp(title string) string {
	return `{"Name":{"id":"title","type":"title","title":[{"type":"text","plain_text":"` + title + `"}]}}`
}

func dataSourceRoutes() map[string]fakeResponse {
	return map[string]fakeResponse{
		"POST /search?page": ok(`{"object":"list","has_more":false,"results":[
			{"object":"page","id":"home","url":"https://notion.so/home","parent":{"type":"workspace","workspace":true},"properties":` + titleProp("Home") + `},
			{"object":"page","id":"nested","parent":{"type":"block_id","block_id":"b1"},"properties":` + titleProp("Nested") + `},
			{"object":"page","id":"also-nested","parent":{"type":"block_id","block_id":"b1"},"properties":` + titleProp("Also nested") + `},
			{"object":"page","id":"gone","archived":true,"parent":{"type":"workspace","workspace":true},"properties":{}},
			{"object":"page","id":"i1","parent":{"type":"data_source_id","data_source_id":"ds1","database_id":"db1"},"properties":` + titleProp("Launch") + `}
		]}`),
		"POST /search?data_source": ok(`{"object":"list","has_more":false,"results":[
			{"object":"data_source","id":"ds1","parent":{"type":"database_id","database_id":"db1"}},
			{"object":"data_source","id":"ds2","parent":{"type":"database_id","database_id":"db1"}}
		]}`),
		"GET /databases/db1": ok(`{"object":"database","id":"db1","title":[{"plain_text":"Projects"}],
			"parent":{"type":"page_id","page_id":"home"},"url":"https://notion.so/db1",
			"data_sources":[{"id":"ds1","name":"Active"},{"id":"ds2","name":"Archive"}]}`),
		"GET /data_sources/ds1": ok(`{"object":"data_source","id":"ds1","title":[{"plain_text":"Active"}],
			"parent":{"type":"database_id","database_id":"db1"},
			"properties":{
				"Name":{"id":"title","name":"Name","type":"title","title":{}},
				"Status":{"id":"s","name":"Status","type":"status","status":{"options":[{"name":"Todo"},{"name":"Done"}],"groups":[]}},
				"Price":{"id":"p","name":"Price","type":"number","number":{"format":"dollar"}}
			}}`),
		"GET /data_sources/ds2":        {status: http.StatusInternalServerError, body: `{"object":"error","status":500,"code":"internal_server_error","message":"boom"}`},
		"POST /data_sources/ds1/query": ok(`{"object":"list","has_more":false,"results":[{"object":"page","id":"i1","parent":{"type":"data_source_id","data_source_id":"ds1","database_id":"db1"},"properties":` + titleProp("Launch") + `}]}`),
		"GET /blocks/b1":               ok(`{"object":"block","id":"b1","type":"column","parent":{"type":"block_id","block_id":"b0"}}`),
		"GET /blocks/b0":               ok(`{"object":"block","id":"b0","type":"column_list","parent":{"type":"page_id","page_id":"home"}}`),
	}
}

func TestFetchDataSources(t *testing.T) {
	f, c := newFakeNotion(t, APIVersionDataSources, dataSourceRoutes())
	rec := &recorder{}
	snap, err := NewFetcher(c, rec).Fetch(t.Context(), FetchOptions{IncludeSchema: true, IncludeItems: true})
	if err != nil {
		t.Fatal(err)
	}

	var pages []string
	for _, p := range snap.Pages {
		pages = append(pages, p.ID+"<"+string(p.Parent.Type)+":"+p.Parent.ID)
	}
	want := []string{"home<workspace:", "nested<page:home", "also-nested<page:home", "i1<data_source:ds1"}
	if !reflect.DeepEqual(pages, want) {
		t.Errorf("pages = %q, want %q", pages, want)
	}
	if got := f.hitCount("GET /blocks/b1"); got != 1 {
		t.Errorf("block b1 fetched %d times, want 1", got)
	}

	if len(snap.Databases) != 1 {
		t.Fatalf("databases = %+v", snap.Databases)
	}
	db := snap.Databases[0]
	if db.Title != "Projects" || db.Parent != (workspace.Parent{Type: workspace.ParentPage, ID: "home"}) || len(db.Properties) != 0 {
		t.Errorf("database = %+v", db)
	}
	if len(db.DataSources) != 1 {
		t.Fatalf("data sources = %+v", db.DataSources)
	}
	ds := db.DataSources[0]
	if ds.ID != "ds1" || ds.Name != "Active" || ds.Parent.ID != "db1" {
		t.Errorf("data source = %+v", ds)
	}
	var names []string
	for _, p := range ds.Properties {
		names = append(names, p.Name)
	}
	if want := []string{"Name", "Status", "Price"}; !reflect.DeepEqual(names, want) {
		t.Errorf("properties = %q, want %q", names, want)
	}
	if len(ds.Pages) != 1 || ds.Pages[0].Title != "Launch" {
		t.Errorf("items = %+v", ds.Pages)
	}

	if len(rec.warnings) != 1 || !strings.Contains(rec.warnings[0], "data source ds2") {
		t.Errorf("warnings = %q", rec.warnings)
	}
	if rec.stats == nil {
		t.Fatal("OnComplete not called")
	}
	if rec.stats.DataSources != 1 || rec.stats.Items != 1 || rec.stats.Skipped != 1 || rec.stats.Databases != 1 || rec.stats.Pages != 4 {
		t.Errorf("stats = %+v", *rec.stats)
	}
}

func TestFetchDataSourcesWithoutSchema(t *testing.T) {
	f, c := newFakeNotion(t, APIVersionDataSources, dataSourceRoutes())
	snap, err := NewFetcher(c, nil).Fetch(t.Context(), FetchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Databases) != 1 || len(snap.Databases[0].DataSources) != 0 {
		t.Errorf("databases = %+v", snap.Databases)
	}
	if got := f.hitCount("GET /data_sources/ds1"); got != 0 {
		t.Errorf("data source fetched %d times without schema", got)
	}
}

func TestFetchLegacy(t *testing.T) {
	f, c := newFakeNotion(t, APIVersionLegacy, map[string]fakeResponse{
		"POST /search?page": ok(`{"object":"list","has_more":false,"results":[
			{"object":"page","id":"r1","parent":{"type":"database_id","database_id":"tasks"},"properties":` + titleProp("Write docs") + `}
		]}`),
		"POST /search?database": ok(`{"object":"list","has_more":false,"results":[{"object":"database","id":"tasks"}]}`),
		"GET /databases/tasks": ok(`{"object":"database","id":"tasks","title":[{"plain_text":"Tasks"}],
			"parent":{"type":"workspace","workspace":true},
			"properties":{
				"Project":{"id":"r","name":"Project","type":"relation","relation":{"database_id":"proj","type":"dual_property","dual_property":{"synced_property_name":"Tasks"}}},
				"Name":{"id":"title","name":"Name","type":"title","title":{}}
			}}`),
		"POST /databases/tasks/query": ok(`{"object":"list","has_more":false,"results":[
			{"object":"page","id":"r1","parent":{"type":"database_id","database_id":"tasks"},"properties":` + titleProp("Write docs") + `},
			{"object":"page","id":"r2","parent":{"type":"database_id","database_id":"tasks"},"properties":` + titleProp("Ship") + `}
		]}`),
	})
	snap, err := NewFetcher(c, nil).Fetch(t.Context(), FetchOptions{IncludeSchema: true, IncludeItems: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := f.hitCount("POST /search?data_source"); got != 0 {
		t.Errorf("legacy client searched data sources %d times", got)
	}
	if len(snap.Pages) != 2 || snap.Pages[0].ID != "r1" || snap.Pages[1].Title != "Ship" {
		t.Errorf("pages = %+v", snap.Pages)
	}
	if len(snap.Databases) != 1 {
		t.Fatalf("databases = %+v", snap.Databases)
	}
	props := snap.Databases[0].Properties
	if len(props) != 2 || props[0].Name != "Project" || props[1].Name != "Name" {
		t.Fatalf("properties = %+v", props)
	}
	rel := props[0].Options.Relation
	if rel == nil || rel.TargetID != "proj" || !rel.Dual || rel.SyncedPropertyName != "Tasks" {
		t.Errorf("relation = %+v", rel)
	}
}

func TestFetchSkipsFailedDatabase(t *testing.T) {
	_, c := newFakeNotion(t, APIVersionLegacy, map[string]fakeResponse{
		"POST /search?page":     ok(`{"object":"list","has_more":false,"results":[]}`),
		"POST /search?database": ok(`{"object":"list","has_more":false,"results":[{"object":"database","id":"bad"},{"object":"database","id":"good"}]}`),
		"GET /databases/good":   ok(`{"object":"database","id":"good","title":[{"plain_text":"Good"}],"parent":{"type":"workspace","workspace":true}}`),
	})
	rec := &recorder{}
	snap, err := NewFetcher(c, rec).Fetch(t.Context(), FetchOptions{IncludeSchema: true, Concurrency: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Databases) != 1 || snap.Databases[0].ID != "good" {
		t.Errorf("databases = %+v", snap.Databases)
	}
	if len(rec.warnings) != 1 || !strings.Contains(rec.warnings[0], "database bad") {
		t.Errorf("warnings = %q", rec.warnings)
	}
}

func TestFetchAuthError(t *testing.T) {
	_, c := newFakeNotion(t, APIVersionDataSources, map[string]fakeResponse{
		"POST /search?page":        ok(`{"object":"list","has_more":false,"results":[]}`),
		"POST /search?data_source": ok(`{"object":"list","has_more":false,"results":[{"object":"data_source","id":"ds1","parent":{"type":"database_id","database_id":"db1"}}]}`),
		"GET /databases/db1":       {status: http.StatusUnauthorized, body: `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`},
	})
	rec := &recorder{}
	_, err := NewFetcher(c, rec).Fetch(t.Context(), FetchOptions{IncludeSchema: true})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Fetch() error = %v, want ErrUnauthorized", err)
	}
	if len(rec.warnings) != 0 {
		t.Errorf("auth failure reported as warnings: %q", rec.warnings)
	}
}

func TestFetchUnresolvedBlock(t *testing.T) {
	_, c := newFakeNotion(t, APIVersionDataSources, map[string]fakeResponse{
		"POST /search?page":        ok(`{"object":"list","has_more":false,"results":[{"object":"page","id":"p","parent":{"type":"block_id","block_id":"missing"},"properties":{}}]}`),
		"POST /search?data_source": ok(`{"object":"list","has_more":false,"results":[]}`),
	})
	rec := &recorder{}
	snap, err := NewFetcher(c, rec).Fetch(t.Context(), FetchOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := workspace.Parent{Type: workspace.ParentBlock, ID: "missing"}
	if len(snap.Pages) != 1 || snap.Pages[0].Parent != want || snap.Pages[0].Title != "Untitled" {
		t.Errorf("pages = %+v", snap.Pages)
	}
	if len(rec.warnings) != 1 {
		t.Errorf("warnings = %q", rec.warnings)
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0123456789ABCDEF0123456789abcdef", "01234567-89ab-cdef-0123-456789abcdef"},
		{"01234567-89ab-cdef-0123-456789abcdef", "01234567-89ab-cdef-0123-456789abcdef"},
		{" home ", "home"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvertProperty(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want workspace.DatabaseProperty
	}{
		{
			"select",
			`{"id":"a","name":"Kind","type":"select","select":{"options":[{"id":"1","name":"Bug","color":"red"}]}}`,
			workspace.DatabaseProperty{ID: "a", Name: "Kind", Type: "select", Options: &workspace.PropertyOptions{Choices: []workspace.Choice{{ID: "1", Name: "Bug", Color: "red"}}}},
		},
		{
			"relation to data source",
			`{"id":"r","name":"Owner","type":"relation","relation":{"database_id":"db","data_source_id":"ds","type":"single_property","single_property":{}}}`,
			workspace.DatabaseProperty{ID: "r", Name: "Owner", Type: "relation", Options: &workspace.PropertyOptions{Relation: &workspace.RelationOptions{TargetID: "ds"}}},
		},
		{
			"formula",
			`{"id":"f","name":"Score","type":"formula","formula":{"expression":"1 + 1"}}`,
			workspace.DatabaseProperty{ID: "f", Name: "Score", Type: "formula", Options: &workspace.PropertyOptions{Formula: &workspace.FormulaOptions{Expression: "1 + 1"}}},
		},
		{
			"rollup",
			`{"id":"u","name":"Hours","type":"rollup","rollup":{"relation_property_name":"Tasks","rollup_property_name":"Estimate","function":"sum"}}`,
			workspace.DatabaseProperty{ID: "u", Name: "Hours", Type: "rollup", Options: &workspace.PropertyOptions{Rollup: &workspace.RollupOptions{RelationProperty: "Tasks", RollupProperty: "Estimate", Function: "sum"}}},
		},
		{
			"number keeps raw configuration",
			`{"id":"n","name":"Price","type":"number","number":{"format":"dollar"}}`,
			workspace.DatabaseProperty{ID: "n", Name: "Price", Type: "number", Options: &workspace.PropertyOptions{Raw: json.RawMessage(`{"format":"dollar"}`)}},
		},
		{
			"empty configuration",
			`{"id":"d","name":"Due","type":"date","date":{},"description":"When"}`,
			workspace.DatabaseProperty{ID: "d", Name: "Due", Type: "date", Description: "When"},
		},
		{
			"name from key",
			`{"id":"x","type":"checkbox","checkbox":{}}`,
			workspace.DatabaseProperty{ID: "x", Name: "key", Type: "checkbox"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p DBProperty
			if err := json.Unmarshal([]byte(tt.in), &p); err != nil {
				t.Fatal(err)
			}
			if got := convertProperty("key", &p); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("convertProperty() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{titleProp("Home"), "Home"},
		{`{"Name":{"type":"title","title":[{"plain_text":"Multi "},{"plain_text":"part"}]}}`, "Multi part"},
		{`{"Name":{"type":"title","title":[]}}`, "Untitled"},
		{`{}`, "Untitled"},
		{``, "Untitled"},
		{`[`, "Untitled"},
	}
	for _, tt := range tests {
		if got := pageTitle(json.RawMessage(tt.in)); got != tt.want {
			t.Errorf("pageTitle(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
