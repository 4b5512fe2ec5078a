// Names the generated documents.

package export

import (
	"strings"
	"time"
	"unicode"

	"github.com/maruel/notiondoc/internal/render"
)

// Marker is the fixed part of every document name.
const Marker = "Notion_Documentation"

// timestampLayout is the YYYY-MM-DD-HH-MM-SS part of document names.
const timestampLayout = "2006-01-02-15-04-05"

// SanitizeName keeps letters, digits and spaces, then joins the words with
// underscores. An empty result becomes "Workspace".
func SanitizeName(name string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, name)
	out := strings.Join(strings.Fields(kept), "_")
	if out == "" {
		return "Workspace"
	}
	return out
}

// BaseName returns "<Sanitized>_Notion_Documentation_<YYYY-MM-DD>-<HH-MM-SS>"
// for t in its own location.
func BaseName(workspaceName string, t time.Time) string {
	return SanitizeName(workspaceName) + "_" + Marker + "_" + t.Format(timestampLayout)
}

// Suffix returns the part appended to the base name before the extension.
// The tree and numbered outline share the txt extension.
func Suffix(f render.Format) string {
	switch f {
	case render.FormatTree:
		return "_tree"
	case render.FormatNumbered:
		return "_numbered"
	default:
		return ""
	}
}

// FileName returns the document file name of r for baseName.
func FileName(baseName string, r render.Renderer) string {
	return baseName + Suffix(r.Format()) + "." + r.Extension()
}
