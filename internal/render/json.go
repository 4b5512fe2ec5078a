// Renders the JSON aggregate.

package render

import (
	"encoding/json"
	"io"

	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

type jsonRenderer struct{}

func (jsonRenderer) Format() Format    { return FormatJSON }
func (jsonRenderer) Extension() string { return "json" }

// jsonDocument adds the empty workspace note to the aggregate.
type jsonDocument struct {
	*workspace.Documentation
	Note string `json:"note,omitempty"`
}

// Render serializes the aggregate itself; the forest is only consulted to
// detect an empty document.
func (jsonRenderer) Render(w io.Writer, doc *workspace.Documentation, forest tree.Forest) error {
	out := jsonDocument{Documentation: doc}
	if len(forest) == 0 {
		out.Note = NoContent
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	e.SetEscapeHTML(false)
	return e.Encode(out)
}
