// Verifies the integration token.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maruel/notiondoc/internal/config"
	"github.com/maruel/notiondoc/internal/notion"
)

func newCheckCommand() *cobra.Command {
	var token, apiVersion string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that the integration token is accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				var err error
				if token, err = config.Token("."); err != nil {
					return err
				}
			}
			client := notion.NewClient(token, notion.ClientOptions{APIVersion: apiVersion})
			u, err := notion.NewFetcher(client, nil).TestConnection(cmd.Context())
			if err != nil {
				return err
			}
			name := u.Name
			if u.Bot != nil && u.Bot.WorkspaceName != "" {
				name = u.Bot.WorkspaceName
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s connected to %s %s\n",
				successStyle.Render("✓"), titleStyle.Render(name), dimStyle.Render("(API "+client.APIVersion()+")"))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Notion integration token (default: NOTION_TOKEN or .env)")
	cmd.Flags().StringVar(&apiVersion, "api-version", notion.APIVersionDataSources, "Notion API version")
	return cmd
}
