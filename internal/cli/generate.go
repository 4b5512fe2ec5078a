// Generates the workspace documentation.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/maruel/notiondoc/internal/config"
	"github.com/maruel/notiondoc/internal/export"
	"github.com/maruel/notiondoc/internal/notion"
	"github.com/maruel/notiondoc/internal/workspace"
)

type generateFlags struct {
	configPath    string
	token         string
	workspaceName string
	output        string
	formats       []string
	apiVersion    string
	includeSchema bool
	includeItems  bool
	snapshot      string
	saveSnapshot  string
	watch         bool
}

func newGenerateCommand() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch the workspace and write the documentation files",
		Example: `  notiondoc generate --format markdown,tree --include-items
  notiondoc generate --snapshot acme.json --format pdf,docx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config(cmd)
			if err != nil {
				return err
			}
			if err := generate(cmd.Context(), cmd.OutOrStdout(), cfg, &f); err != nil {
				return err
			}
			if !f.watch {
				return nil
			}
			return watch(cmd.Context(), f.watched(), func() {
				cfg, err := f.config(cmd)
				if err == nil {
					err = generate(cmd.Context(), cmd.OutOrStdout(), cfg, &f)
				}
				if err != nil {
					slog.ErrorContext(cmd.Context(), "Failed to regenerate documentation", "err", err)
				}
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", config.FileName, "Configuration file")
	fl.StringVar(&f.token, "token", "", "Notion integration token (default: NOTION_TOKEN or .env)")
	fl.StringVar(&f.workspaceName, "workspace-name", "", "Workspace name used in titles and file names")
	fl.StringVarP(&f.output, "output", "o", "", "Output directory")
	fl.StringSliceVarP(&f.formats, "format", "f", nil, "Comma-separated output formats")
	fl.StringVar(&f.apiVersion, "api-version", "", "Notion API version ("+notion.APIVersionLegacy+" or "+notion.APIVersionDataSources+")")
	fl.BoolVar(&f.includeSchema, "include-schema", true, "Document database properties and data sources")
	fl.BoolVar(&f.includeItems, "include-items", false, "Document the pages of every database")
	fl.StringVar(&f.snapshot, "snapshot", "", "Render a snapshot file instead of fetching from Notion")
	fl.StringVar(&f.saveSnapshot, "save-snapshot", "", "Also write the fetched entities to this file")
	fl.BoolVar(&f.watch, "watch", false, "Regenerate when the configuration or snapshot file changes")
	return cmd
}

// config loads the configuration file and applies the flags explicitly set
// on the command line.
func (f *generateFlags) config(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromPath(f.configPath)
	if err != nil {
		return nil, err
	}
	fl := cmd.Flags()
	if fl.Changed("workspace-name") {
		cfg.WorkspaceName = f.workspaceName
	}
	if fl.Changed("output") {
		cfg.OutputDir = f.output
	}
	if fl.Changed("format") {
		cfg.Formats = f.formats
	}
	if fl.Changed("api-version") {
		cfg.APIVersion = f.apiVersion
	}
	if fl.Changed("include-schema") {
		cfg.IncludeSchema = f.includeSchema
	}
	if fl.Changed("include-items") {
		cfg.IncludeItems = f.includeItems
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// watched returns the files whose changes trigger a regeneration.
func (f *generateFlags) watched() []string {
	files := []string{f.configPath}
	if f.snapshot != "" {
		files = append(files, f.snapshot)
	}
	return files
}

// generate loads or fetches the snapshot and writes every requested format.
func generate(ctx context.Context, out io.Writer, cfg *config.Config, f *generateFlags) error {
	formats, err := cfg.OutputFormats()
	if err != nil {
		return err
	}
	name := cfg.WorkspaceName
	var snap workspace.Snapshot
	if f.snapshot != "" {
		if snap, err = workspace.LoadSnapshot(f.snapshot); err != nil {
			return err
		}
	} else {
		token := f.token
		if token == "" {
			if token, err = config.Token("."); err != nil {
				return err
			}
		}
		fetcher := notion.NewFetcher(notion.NewClient(token, cfg.ClientOptions()), &notion.SlogProgress{})
		if name == "" {
			name = fetcher.WorkspaceName(ctx)
		}
		if snap, err = fetcher.Fetch(ctx, cfg.FetchOptions()); err != nil {
			return fmt.Errorf("failed to fetch workspace: %w", err)
		}
		writeStats(out, fetcher.Stats())
	}
	if f.saveSnapshot != "" {
		if err := workspace.WriteSnapshot(f.saveSnapshot, snap); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Saved snapshot", "path", f.saveSnapshot)
	}

	doc := workspace.New(name, snap, workspace.Options{IncludeSchema: cfg.IncludeSchema, IncludeItems: cfg.IncludeItems}, time.Now())
	for _, w := range doc.IntegrityWarnings() {
		slog.WarnContext(ctx, "Inconsistent workspace", "detail", w)
	}
	exp := export.Exporter{Tree: cfg.TreeOptions()}
	results, err := exp.Generate(ctx, doc, &export.Request{
		Formats:   formats,
		OutputDir: cfg.OutputDir,
		BaseName:  export.BaseName(doc.WorkspaceName, doc.GeneratedAt),
	})
	writeResults(out, displayName(doc), results)
	if err != nil {
		return err
	}
	if failed := export.Failed(results); len(failed) > 0 {
		errs := make([]error, 0, len(failed))
		for i := range failed {
			errs = append(errs, failed[i].Err)
		}
		return fmt.Errorf("%d of %d formats failed: %w", len(failed), len(results), errors.Join(errs...))
	}
	return nil
}

func displayName(doc *workspace.Documentation) string {
	if doc.WorkspaceName == "" {
		return "Notion Workspace"
	}
	return doc.WorkspaceName
}

// watch calls fn whenever one of files is written, until ctx is done. The
// parent directories are watched to catch files replaced by a rename.
func watch(ctx context.Context, files []string, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	targets := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		targets[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", f, err)
		}
	}
	slog.InfoContext(ctx, "Watching for changes", "files", files)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				slog.InfoContext(ctx, "File modified, regenerating", "path", event.Name)
				fn()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching files", "err", err)
		}
	}
}
