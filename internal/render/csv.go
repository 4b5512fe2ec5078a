// Renders the flat CSV listing.

package render

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

// csvHeader is the first row of every CSV document.
var csvHeader = []string{"Outline", "Kind", "Title", "ID", "URL", "Parent Type", "Parent ID", "Created", "Last Edited"}

type csvRenderer struct{}

func (csvRenderer) Format() Format    { return FormatCSV }
func (csvRenderer) Extension() string { return "csv" }

// Render writes one row per node in depth-first order. The Outline column
// carries the numbered outline label so the hierarchy survives flattening.
func (csvRenderer) Render(w io.Writer, _ *workspace.Documentation, forest tree.Forest) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if len(forest) == 0 {
		if err := cw.Write([]string{"", "", NoContent, "", "", "", "", "", ""}); err != nil {
			return err
		}
	}
	if err := writeCSV(cw, forest, ""); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeCSV(cw *csv.Writer, nodes []*tree.Node, prefix string) error {
	for i, n := range nodes {
		label := outlineLabel(prefix, i)
		if err := cw.Write(csvRow(label, n)); err != nil {
			return err
		}
		if err := writeCSV(cw, n.Children, label); err != nil {
			return err
		}
	}
	return nil
}

func csvRow(label string, n *tree.Node) []string {
	row := []string{label, string(n.Kind), n.Title, n.ID, "", "", "", "", ""}
	var parent workspace.Parent
	switch {
	case n.Page != nil:
		row[4] = n.Page.URL
		parent = n.Page.Parent
		row[7], row[8] = csvTime(n.Page.CreatedTime), csvTime(n.Page.LastEditedTime)
	case n.Database != nil:
		row[4] = n.Database.URL
		parent = n.Database.Parent
		row[7], row[8] = csvTime(n.Database.CreatedTime), csvTime(n.Database.LastEditedTime)
	case n.DataSource != nil:
		parent = n.DataSource.Parent
		row[7], row[8] = csvTime(n.DataSource.CreatedTime), csvTime(n.DataSource.LastEditedTime)
	}
	row[5], row[6] = string(parent.Type), parent.ID
	return row
}

func csvTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
