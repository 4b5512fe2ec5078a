// Renders the PDF page layout.

package render

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

const (
	pdfMargin   = 15.0
	pdfIndent   = 6.0
	pdfMaxRunes = 120
	pdfFont     = "Helvetica"
)

type pdfRenderer struct{}

func (pdfRenderer) Format() Format    { return FormatPDF }
func (pdfRenderer) Extension() string { return "pdf" }

// Render lays out the numbered outline on A4 pages, one paragraph per line.
func (pdfRenderer) Render(w io.Writer, doc *workspace.Documentation, forest tree.Forest) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetTitle(workspaceTitle(doc)+" Workspace Map", true)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return tr(strings.ReplaceAll(s, "→", "->"))
	}
	pdf.AddPage()

	writeLine := func(indent float64, s string, st Style) {
		shape := ""
		if st.Bold {
			shape = "B"
		}
		pdf.SetFont(pdfFont, shape, st.Size)
		pdf.SetX(pdfMargin + indent)
		pdf.MultiCell(0, st.Size*0.5, text(truncate(s, pdfMaxRunes)), "", "L", false)
	}
	writeLine(0, workspaceTitle(doc)+" Workspace Map", StyleTitle)
	writeLine(0, "Generated: "+formatTime(doc.GeneratedAt), StyleSubtitle)
	pdf.Ln(4)
	for _, l := range Layout(forest) {
		s := l.Text
		if l.Label != "" {
			s = l.Label + " " + s
		}
		writeLine(float64(l.Depth-1)*pdfIndent, s, l.Style)
	}
	return pdf.Output(w)
}
