// Prints JSON schemas for the generated JSON document and the config file.

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/maruel/notiondoc/internal/config"
	"github.com/maruel/notiondoc/internal/workspace"
)

func newSchemaCommand() *cobra.Command {
	var forConfig bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the JSON output or of the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := documentSchema()
			if forConfig {
				s = configSchema()
			}
			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().BoolVar(&forConfig, "config", false, "Print the schema of "+config.FileName)
	return cmd
}

// documentSchema describes the documents written by the json format.
func documentSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.Reflect(&workspace.Documentation{})
	s.Title = "Notion workspace documentation"
	return s
}

// configSchema describes config.FileName; property names follow the YAML keys.
func configSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true, FieldNameTag: "yaml"}
	s := r.Reflect(&config.Config{})
	s.Title = "notiondoc configuration"
	return s
}
