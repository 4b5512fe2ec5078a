// Lists the supported output formats.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maruel/notiondoc/internal/export"
	"github.com/maruel/notiondoc/internal/render"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported output formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			for _, f := range render.Formats() {
				r, err := render.Lookup(f)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(w, "%-9s %s\n", f, dimStyle.Render(export.FileName("<name>", r)))
			}
			return nil
		},
	}
}
