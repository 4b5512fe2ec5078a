// Root command and shared flags.

// Package cli implements the notiondoc command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maruel/notiondoc/internal/notion"
)

// NewRootCommand returns the notiondoc command tree.
func NewRootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "notiondoc",
		Short: "Document the structure of a Notion workspace",
		Long: `notiondoc walks every page, database and data source shared with a Notion
integration and writes a structural map of the workspace as JSON, Markdown,
CSV, an ASCII tree, a numbered outline, PDF or DOCX.

The integration token is read from NOTION_TOKEN or from a .env file in the
current directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
			return nil
		},
	}
	root.Version = version()
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.AddCommand(
		newGenerateCommand(),
		newCheckCommand(),
		newSchemaCommand(),
		newFormatsCommand(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()
	return run(ctx, NewRootCommand(), os.Args[1:], os.Stderr)
}

func run(ctx context.Context, root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	var authErr *notion.AuthError
	if errors.As(err, &authErr) {
		_, _ = fmt.Fprintf(stderr, "%s %v\n", errorStyle.Render("authentication failed:"), authErr)
		return 2
	}
	_, _ = fmt.Fprintf(stderr, "notiondoc: %v\n", err)
	return 1
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
