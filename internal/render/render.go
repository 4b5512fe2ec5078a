// Defines output formats and the renderer lookup table.

// Package render turns a workspace forest into JSON, Markdown, CSV, ASCII
// tree, numbered outline, PDF and DOCX documents.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

// NoContent is emitted by every renderer when the forest is empty.
const NoContent = "No accessible content found."

// Format identifies an output format.
type Format string

// Output formats.
const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatTree     Format = "tree"
	FormatNumbered Format = "numbered"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// ParseFormat parses a format name (case-insensitive). "md" is accepted for
// markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "md":
		return FormatMarkdown, nil
	case FormatJSON, FormatMarkdown, FormatCSV, FormatTree, FormatNumbered, FormatPDF, FormatDOCX:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %q (expected one of %s)", s, strings.Join(formatNames(), ", "))
	}
}

// ParseFormats parses a list of format names, dropping duplicates.
func ParseFormats(names []string) ([]Format, error) {
	out := make([]Format, 0, len(names))
	seen := make(map[Format]bool)
	for _, name := range names {
		for part := range strings.SplitSeq(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

// String returns the format name.
func (f Format) String() string {
	return string(f)
}

// Renderer renders a documentation forest in one format.
//
// Render must not modify doc or forest; rendering the same input twice
// produces identical bytes.
type Renderer interface {
	Format() Format
	// Extension is the file extension without the leading dot.
	Extension() string
	Render(w io.Writer, doc *workspace.Documentation, forest tree.Forest) error
}

var renderers = []Renderer{
	jsonRenderer{},
	markdownRenderer{},
	csvRenderer{},
	asciiRenderer{},
	numberedRenderer{},
	pdfRenderer{},
	docxRenderer{},
}

// Lookup returns the renderer for f.
func Lookup(f Format) (Renderer, error) {
	for _, r := range renderers {
		if r.Format() == f {
			return r, nil
		}
	}
	return nil, fmt.Errorf("no renderer for format %q", f)
}

// Formats returns every supported format in a stable order.
func Formats() []Format {
	out := make([]Format, 0, len(renderers))
	for _, r := range renderers {
		out = append(out, r.Format())
	}
	return out
}

func formatNames() []string {
	out := make([]string, 0, len(renderers))
	for _, r := range renderers {
		out = append(out, string(r.Format()))
	}
	return out
}

// formatTime renders timestamps in every text format.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

// totalProperties returns the property count, or "not included" when the
// schema was not requested.
func totalProperties(doc *workspace.Documentation) string {
	if !doc.IncludeSchema {
		return "not included"
	}
	return fmt.Sprint(doc.Summary.TotalProperties)
}

// workspaceTitle returns the workspace display name.
func workspaceTitle(doc *workspace.Documentation) string {
	if doc.WorkspaceName == "" {
		return "Notion Workspace"
	}
	return doc.WorkspaceName
}
