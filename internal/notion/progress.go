// Defines progress reporting interfaces and implementations.

package notion

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// FetchStats contains statistics about a fetch operation.
type FetchStats struct {
	Pages       int           `json:"pages"`
	Databases   int           `json:"databases"`
	DataSources int           `json:"data_sources"`
	Items       int           `json:"items"`
	Skipped     int           `json:"skipped"`
	Duration    time.Duration `json:"duration"`
}

// ProgressReporter is the interface for reporting fetch progress.
//
// The fetcher serializes calls, so implementations need no locking.
type ProgressReporter interface {
	OnStart(total int)
	OnProgress(current int, item string)
	OnWarning(msg string)
	OnError(err error)
	OnComplete(stats FetchStats)
}

// CLIProgress writes progress to stdout/stderr.
type CLIProgress struct {
	Out io.Writer
	Err io.Writer
}

// OnStart is called when the databases to fetch are known.
func (p *CLIProgress) OnStart(total int) {
	_, _ = fmt.Fprintf(p.Out, "Found %d databases\n", total)
}

// OnProgress is called for each database fetched.
func (p *CLIProgress) OnProgress(current int, item string) {
	_, _ = fmt.Fprintf(p.Out, "[%d] %s\n", current, item)
}

// OnWarning is called for skipped entities.
func (p *CLIProgress) OnWarning(msg string) {
	_, _ = fmt.Fprintf(p.Err, "Warning: %s\n", msg)
}

// OnError is called for errors that abort the fetch.
func (p *CLIProgress) OnError(err error) {
	_, _ = fmt.Fprintf(p.Err, "Error: %v\n", err)
}

// OnComplete is called when the fetch finishes.
func (p *CLIProgress) OnComplete(stats FetchStats) {
	_, _ = fmt.Fprintf(p.Out, "\nFetched\n")
	_, _ = fmt.Fprintf(p.Out, "-------\n")
	_, _ = fmt.Fprintf(p.Out, "Pages:        %d\n", stats.Pages)
	_, _ = fmt.Fprintf(p.Out, "Databases:    %d\n", stats.Databases)
	if stats.DataSources > 0 {
		_, _ = fmt.Fprintf(p.Out, "Data sources: %d\n", stats.DataSources)
	}
	if stats.Items > 0 {
		_, _ = fmt.Fprintf(p.Out, "Items:        %d\n", stats.Items)
	}
	if stats.Skipped > 0 {
		_, _ = fmt.Fprintf(p.Out, "Skipped:      %d\n", stats.Skipped)
	}
	_, _ = fmt.Fprintf(p.Out, "Duration:     %s\n", stats.Duration.Round(time.Millisecond))
}

// SlogProgress forwards progress to the default logger.
type SlogProgress struct{}

// OnStart is called when the databases to fetch are known.
func (p *SlogProgress) OnStart(total int) {
	slog.Info("Fetching databases", "count", total)
}

// OnProgress is called for each database fetched.
func (p *SlogProgress) OnProgress(current int, item string) {
	slog.Debug("Fetched database", "n", current, "title", item)
}

// OnWarning is called for skipped entities.
func (p *SlogProgress) OnWarning(msg string) {
	slog.Warn(msg)
}

// OnError is called for errors that abort the fetch.
func (p *SlogProgress) OnError(err error) {
	slog.Error("Fetch failed", "err", err)
}

// OnComplete is called when the fetch finishes.
func (p *SlogProgress) OnComplete(stats FetchStats) {
	slog.Info("Fetch complete",
		"pages", stats.Pages,
		"databases", stats.Databases,
		"data_sources", stats.DataSources,
		"items", stats.Items,
		"skipped", stats.Skipped,
		"duration", stats.Duration.Round(time.Millisecond))
}

// NullProgress discards all progress updates.
type NullProgress struct{}

// OnStart is called when the databases to fetch are known.
func (p *NullProgress) OnStart(total int) {}

// OnProgress is called for each database fetched.
func (p *NullProgress) OnProgress(current int, item string) {}

// OnWarning is called for skipped entities.
func (p *NullProgress) OnWarning(msg string) {}

// OnError is called for errors that abort the fetch.
func (p *NullProgress) OnError(err error) {}

// OnComplete is called when the fetch finishes.
func (p *NullProgress) OnComplete(stats FetchStats) {}

// lockedProgress serializes calls to a reporter shared by goroutines.
type lockedProgress struct {
	mu sync.Mutex
	r  ProgressReporter
}

func (p *lockedProgress) OnStart(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r.OnStart(total)
}

func (p *lockedProgress) OnProgress(current int, item string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r.OnProgress(current, item)
}

func (p *lockedProgress) OnWarning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r.OnWarning(msg)
}

func (p *lockedProgress) OnError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r.OnError(err)
}

func (p *lockedProgress) OnComplete(stats FetchStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.r.OnComplete(stats)
}
