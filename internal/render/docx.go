// Renders the DOCX page layout.

package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	docx "github.com/fumiama/go-docx"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

type docxRenderer struct{}

func (docxRenderer) Format() Format    { return FormatDOCX }
func (docxRenderer) Extension() string { return "docx" }

// Render writes the numbered outline as a flow document. Nesting is shown
// with non-breaking space indentation.
func (docxRenderer) Render(w io.Writer, doc *workspace.Documentation, forest tree.Forest) error {
	d := docx.New().WithDefaultTheme().WithA4Page()
	addDocxLine(d, "", workspaceTitle(doc)+" Workspace Map", StyleTitle)
	addDocxLine(d, "", "Generated: "+formatTime(doc.GeneratedAt), StyleSubtitle)
	for _, l := range Layout(forest) {
		s := l.Text
		if l.Label != "" {
			s = l.Label + " " + s
		}
		addDocxLine(d, strings.Repeat("\u00a0", 4*(l.Depth-1)), s, l.Style)
	}
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to write docx: %w", err)
	}
	return repack(w, buf.Bytes(), doc.GeneratedAt)
}

// repack rewrites the archive with entries sorted by name and stamped with
// modified, so the same document always yields the same bytes.
func repack(w io.Writer, data []byte, modified time.Time) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("failed to read docx archive: %w", err)
	}
	if modified.IsZero() {
		modified = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	files := slices.Clone(zr.File)
	slices.SortFunc(files, func(a, b *zip.File) int { return strings.Compare(a.Name, b.Name) })
	zw := zip.NewWriter(w)
	for _, f := range files {
		if err := copyEntry(zw, f, modified.UTC()); err != nil {
			return err
		}
	}
	return zw.Close()
}

func copyEntry(zw *zip.Writer, f *zip.File, modified time.Time) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()
	dst, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", f.Name, err)
	}
	if _, err := io.Copy(dst, rc); err != nil { //nolint:gosec // G110: the archive was produced in memory by this process
		return fmt.Errorf("failed to copy %s: %w", f.Name, err)
	}
	return nil
}

func addDocxLine(d *docx.Docx, indent, s string, st Style) {
	p := d.AddParagraph()
	if indent != "" {
		p.AddText(indent)
	}
	r := p.AddText(s).Size(halfPoints(st.Size))
	if st.Bold {
		r.Bold()
	}
}

// halfPoints converts a point size to the half-point string used by Word.
func halfPoints(size float64) string {
	return strconv.Itoa(int(size * 2))
}
