// Tests for document assembly.

package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/maruel/notiondoc/internal/render"
	"github.com/maruel/notiondoc/internal/workspace"
)

var now = time.Date(2024, 3, 1, 9, 5, 7, 0, time.UTC)

func testDoc() *workspace.Documentation {
	snap := workspace.Snapshot{Pages: []workspace.Page{
		{ID: "home", Title: "Home", Parent: workspace.Parent{Type: workspace.ParentWorkspace}},
		{ID: "sub", Title: "Sub", Parent: workspace.Parent{Type: workspace.ParentPage, ID: "home"}},
	}}
	return workspace.New("Acme Corp", snap, workspace.Options{IncludeSchema: true}, now)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp", "Acme_Corp"},
		{"  Acme   Corp  ", "Acme_Corp"},
		{"R&D / Team #1", "RD_Team_1"},
		{"Équipe été", "Équipe_été"},
		{"!!!", "Workspace"},
		{"", "Workspace"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeName(tt.in); got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	base := BaseName("Acme Corp", now)
	if want := "Acme_Corp_Notion_Documentation_2024-03-01-09-05-07"; base != want {
		t.Fatalf("BaseName() = %q, want %q", base, want)
	}
	want := map[render.Format]string{
		render.FormatJSON:     base + ".json",
		render.FormatMarkdown: base + ".md",
		render.FormatCSV:      base + ".csv",
		render.FormatTree:     base + "_tree.txt",
		render.FormatNumbered: base + "_numbered.txt",
		render.FormatPDF:      base + ".pdf",
		render.FormatDOCX:     base + ".docx",
	}
	for f, name := range want {
		r, err := render.Lookup(f)
		if err != nil {
			t.Fatal(err)
		}
		if got := FileName(base, r); got != name {
			t.Errorf("FileName(%s) = %q, want %q", f, got, name)
		}
	}
}

func TestGenerate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	results, err := Generate(t.Context(), testDoc(), render.Formats(), dir, "base")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(render.Formats()) {
		t.Fatalf("got %d results, want %d", len(results), len(render.Formats()))
	}
	for _, r := range results {
		if !r.OK() {
			t.Errorf("%s failed: %v", r.Format, r.Err)
			continue
		}
		fi, err := os.Stat(r.Path)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size() != r.Size || r.Size == 0 {
			t.Errorf("%s: size %d, file has %d", r.Format, r.Size, fi.Size())
		}
	}
	b, err := os.ReadFile(filepath.Join(dir, "base_numbered.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(b), "1 Home page\n1.1 Sub page\n"; got != want {
		t.Errorf("numbered = %q, want %q", got, want)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestGeneratePartialFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of the JSON file makes the final rename fail.
	if err := os.Mkdir(filepath.Join(dir, "base.json"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "base.json", "keep"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	formats := []render.Format{render.FormatJSON, render.FormatMarkdown}
	results, err := Generate(t.Context(), testDoc(), formats, dir, "base")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	var re *RenderError
	if !errors.As(results[0].Err, &re) || re.Format != render.FormatJSON {
		t.Errorf("json result error = %v, want a RenderError", results[0].Err)
	}
	if results[0].Path != "" {
		t.Errorf("failed result has path %q", results[0].Path)
	}
	if !results[1].OK() {
		t.Errorf("markdown failed: %v", results[1].Err)
	}
	if got := Failed(results); len(got) != 1 || got[0].Format != render.FormatJSON {
		t.Errorf("Failed() = %+v", got)
	}
}

func TestGenerateInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		formats []render.Format
		dir     string
		base    string
	}{
		{"no formats", nil, dir, "base"},
		{"unknown format", []render.Format{"html"}, dir, "base"},
		{"no directory", []render.Format{render.FormatJSON}, "", "base"},
		{"no base name", []render.Format{render.FormatJSON}, dir, ""},
		{"path in base name", []render.Format{render.FormatJSON}, dir, "../base"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := Generate(t.Context(), testDoc(), tt.formats, tt.dir, tt.base)
			if err == nil {
				t.Fatalf("Generate() succeeded with %+v", results)
			}
		})
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("invalid requests wrote %d files", len(entries))
	}
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := Generate(ctx, testDoc(), []render.Format{render.FormatJSON}, t.TempDir(), "base")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}
