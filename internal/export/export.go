// Renders and writes the requested documents.

// Package export assembles the documentation files: it builds the forest
// once, runs each requested renderer and writes one file per format.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/maruel/notiondoc/internal/render"
	"github.com/maruel/notiondoc/internal/tree"
	"github.com/maruel/notiondoc/internal/workspace"
)

// RenderError is a failure to render or write one format.
type RenderError struct {
	Format render.Format
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to generate %s: %v", e.Format, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one format.
type Result struct {
	Format render.Format `json:"format"`
	Path   string        `json:"path,omitempty"`
	Size   int64         `json:"size"`
	// Err is a *RenderError when the format failed.
	Err error `json:"-"`
}

// OK reports whether the document was written.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Request is the set of documents to produce.
type Request struct {
	Formats   []render.Format
	OutputDir string
	// BaseName is the file name without suffix and extension; see BaseName.
	BaseName string
}

// Validate checks the request before any file is written.
func (r *Request) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Formats, validation.Required, validation.Each(validation.By(knownFormat))),
		validation.Field(&r.OutputDir, validation.Required),
		validation.Field(&r.BaseName, validation.Required, validation.By(plainFileName)),
	)
}

func knownFormat(v any) error {
	f, _ := v.(render.Format)
	if _, err := render.Lookup(f); err != nil {
		return errors.New("unknown format")
	}
	return nil
}

func plainFileName(v any) error {
	s, _ := v.(string)
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return errors.New("must not contain a path")
	}
	return nil
}

// Exporter writes documents.
type Exporter struct {
	// Tree configures the forest shared by every format.
	Tree tree.Options
}

// Generate writes the documents with the default forest options.
func Generate(ctx context.Context, doc *workspace.Documentation, formats []render.Format, outputDir, baseFilename string) ([]Result, error) {
	var e Exporter
	return e.Generate(ctx, doc, &Request{Formats: formats, OutputDir: outputDir, BaseName: baseFilename})
}

// Generate builds the forest once and writes one file per requested format.
//
// A format that fails to render or write is reported in its Result and does
// not stop the others. The returned error is only set when the request is
// invalid, the output directory cannot be created or ctx is done; results
// already produced are returned along with it.
func (e *Exporter) Generate(ctx context.Context, doc *workspace.Documentation, req *Request) ([]Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export request: %w", err)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil { //nolint:gosec // G301: 0o755 is intentional for output directories
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	forest := tree.Build(doc, e.Tree)
	results := make([]Result, 0, len(req.Formats))
	for _, f := range req.Formats {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := Result{Format: f}
		r, err := render.Lookup(f)
		if err == nil {
			res.Path = filepath.Join(req.OutputDir, FileName(req.BaseName, r))
			res.Size, err = writeDocument(res.Path, r, doc, forest)
		}
		if err != nil {
			res.Path, res.Size = "", 0
			res.Err = &RenderError{Format: f, Err: err}
			slog.WarnContext(ctx, "Failed to generate document", "format", f, "err", err)
		} else {
			slog.InfoContext(ctx, "Generated document", "format", f, "path", res.Path, "size", res.Size)
		}
		results = append(results, res)
	}
	return results, nil
}

// writeDocument renders into memory then moves a temporary file in place, so
// a failed format never leaves a partial file behind.
func writeDocument(path string, r render.Renderer, doc *workspace.Documentation, forest tree.Forest) (size int64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("renderer panicked: %v", p)
		}
	}()
	var buf bytes.Buffer
	if err := r.Render(&buf, doc, forest); err != nil {
		return 0, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return 0, errors.Join(fmt.Errorf("failed to write temp file: %w", err), f.Close(), os.Remove(tmp))
	}
	if err := f.Close(); err != nil {
		return 0, errors.Join(fmt.Errorf("failed to close temp file: %w", err), os.Remove(tmp))
	}
	if err := os.Chmod(tmp, 0o644); err != nil { //nolint:gosec // G302: 0o644 is intentional for readable files
		return 0, errors.Join(fmt.Errorf("failed to set permissions: %w", err), os.Remove(tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return 0, errors.Join(fmt.Errorf("failed to rename document to final location: %w", err), os.Remove(tmp))
	}
	return int64(buf.Len()), nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
