// Computes the styled lines shared by the page layout backends.

package render

import (
	"strings"
	"unicode/utf8"

	"github.com/maruel/notiondoc/internal/tree"
)

// Style is the typography of one layout line.
type Style struct {
	Name string
	Size float64
	Bold bool
}

// Layout styles.
var (
	StyleTitle      = Style{Name: "title", Size: 20, Bold: true}
	StyleSubtitle   = Style{Name: "subtitle", Size: 10}
	StylePage1      = Style{Name: "page-1", Size: 18, Bold: true}
	StylePage2      = Style{Name: "page-2", Size: 16, Bold: true}
	StylePage3      = Style{Name: "page-3", Size: 14, Bold: true}
	StylePage4      = Style{Name: "page-4", Size: 12, Bold: true}
	StyleItemPage   = Style{Name: "item-page", Size: 11}
	StyleDatabase   = Style{Name: "database", Size: 14, Bold: true}
	StyleDataSource = Style{Name: "data-source", Size: 13, Bold: true}
	StyleSection    = Style{Name: "section", Size: 11, Bold: true}
	StyleBody       = Style{Name: "body", Size: 10}
)

// StyledLine is one line of the page layout.
type StyledLine struct {
	// Depth is 1 for roots.
	Depth int
	Label string
	Text  string
	Style Style
}

// sectionDisplay maps section titles to their page layout text.
var sectionDisplay = map[string]string{
	tree.TitleProperties:       tree.TitleProperties,
	tree.TitleDataSourcePages:  tree.TitleDataSourcePages,
	tree.TitleLegacyProperties: "Properties",
	tree.TitleLegacyItems:      "Items",
}

// itemSections are the section titles whose page children are database items.
var itemSections = map[string]bool{
	tree.TitleDataSourcePages: true,
	tree.TitleLegacyItems:     true,
}

// propertySections are the section titles whose children are property lines.
var propertySections = map[string]bool{
	tree.TitleProperties:       true,
	tree.TitleLegacyProperties: true,
}

// Layout derives the styled lines from the numbered outline of forest.
//
// Lines under a properties section are body text. Other styles are picked
// from the line text: a "page", "database" or "data source" suffix, or an
// exact section title.
func Layout(forest tree.Forest) []StyledLine {
	text := strings.TrimSuffix(NumberedOutline(forest), "\n")
	var out []StyledLine
	// ancestors holds the raw titles of the current line's ancestors.
	var ancestors []string
	for line := range strings.SplitSeq(text, "\n") {
		label, title, ok := splitOutlineLine(line)
		if !ok {
			out = append(out, StyledLine{Depth: 1, Text: line, Style: StyleBody})
			continue
		}
		depth := strings.Count(label, ".") + 1
		if depth-1 < len(ancestors) {
			ancestors = ancestors[:depth-1]
		}
		l := StyledLine{Depth: depth, Label: label, Text: title}
		switch {
		case under(ancestors, propertySections):
			l.Style = StyleBody
		case sectionDisplay[title] != "":
			l.Text = sectionDisplay[title]
			l.Style = StyleSection
		case strings.HasSuffix(title, " page") || title == "Untitled Page":
			l.Style = pageStyle(depth, under(ancestors, itemSections))
		case strings.HasSuffix(title, " database"):
			l.Style = StyleDatabase
		case strings.HasSuffix(title, " data source"):
			l.Style = StyleDataSource
		default:
			l.Style = StyleBody
		}
		out = append(out, l)
		ancestors = append(ancestors, title)
	}
	return out
}

func pageStyle(depth int, item bool) Style {
	switch {
	case item:
		return StyleItemPage
	case depth <= 1:
		return StylePage1
	case depth == 2:
		return StylePage2
	case depth == 3:
		return StylePage3
	default:
		return StylePage4
	}
}

// under reports whether one of ancestors is a section in sections.
func under(ancestors []string, sections map[string]bool) bool {
	for _, a := range ancestors {
		if sections[a] {
			return true
		}
	}
	return false
}

// splitOutlineLine splits "1.2 Title" into its label and title.
func splitOutlineLine(line string) (label, title string, ok bool) {
	label, title, ok = strings.Cut(line, " ")
	if !ok || label == "" {
		return "", "", false
	}
	for part := range strings.SplitSeq(label, ".") {
		if part == "" {
			return "", "", false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return "", "", false
			}
		}
	}
	return label, title, true
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
