// Orchestrates discovery of a Notion workspace.

package notion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maruel/notiondoc/internal/workspace"
)

// DefaultConcurrency is the number of databases fetched in parallel.
const DefaultConcurrency = 4

// maxBlockHops bounds the walk from a block up to its owning page.
const maxBlockHops = 16

// FetchOptions defines what to fetch.
type FetchOptions struct {
	// IncludeSchema fetches database properties and data sources.
	IncludeSchema bool
	// IncludeItems fetches the pages of every database or data source.
	IncludeItems bool
	// Concurrency bounds the databases fetched in parallel.
	Concurrency int
}

// Fetcher discovers pages, databases and data sources.
//
// A Fetcher is meant for one workspace; it memoizes block parents across
// calls.
type Fetcher struct {
	client   *Client
	progress ProgressReporter

	mu           sync.Mutex
	blockParents map[string]workspace.Parent
	stats        FetchStats
}

// NewFetcher creates a new fetcher.
func NewFetcher(client *Client, progress ProgressReporter) *Fetcher {
	if progress == nil {
		progress = &NullProgress{}
	}
	return &Fetcher{
		client:       client,
		progress:     &lockedProgress{r: progress},
		blockParents: make(map[string]workspace.Parent),
	}
}

// TestConnection verifies the token and returns the integration's bot user.
func (f *Fetcher) TestConnection(ctx context.Context) (*User, error) {
	return f.client.Me(ctx)
}

// WorkspaceName returns the workspace name of the integration, or "" when
// it cannot be determined.
func (f *Fetcher) WorkspaceName(ctx context.Context) string {
	u, err := f.client.Me(ctx)
	if err != nil || u.Bot == nil {
		return ""
	}
	return u.Bot.WorkspaceName
}

// Fetch retrieves everything selected by opts.
//
// Entities that fail to load are reported through OnWarning and skipped. An
// AuthError, a failed search or a cancelled ctx aborts the fetch.
func (f *Fetcher) Fetch(ctx context.Context, opts FetchOptions) (workspace.Snapshot, error) {
	start := time.Now()
	f.mu.Lock()
	f.stats = FetchStats{}
	f.mu.Unlock()

	pages, err := f.FetchAllPages(ctx)
	if err != nil {
		f.progress.OnError(err)
		return workspace.Snapshot{}, err
	}
	databases, rows, err := f.FetchAllDatabases(ctx, opts)
	if err != nil {
		f.progress.OnError(err)
		return workspace.Snapshot{}, err
	}
	seen := make(map[string]bool, len(pages))
	for i := range pages {
		seen[pages[i].ID] = true
	}
	for i := range rows {
		if !seen[rows[i].ID] {
			seen[rows[i].ID] = true
			pages = append(pages, rows[i])
		}
	}

	f.mu.Lock()
	f.stats.Pages = len(pages)
	f.stats.Databases = len(databases)
	f.stats.Duration = time.Since(start)
	stats := f.stats
	f.mu.Unlock()
	f.progress.OnComplete(stats)
	return workspace.Snapshot{Pages: pages, Databases: databases}, nil
}

// Stats returns the statistics of the last Fetch.
func (f *Fetcher) Stats() FetchStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

// FetchAllPages returns every page shared with the integration, in search
// order. Archived pages are skipped and block parents are resolved to the
// page owning the block.
func (f *Fetcher) FetchAllPages(ctx context.Context) ([]workspace.Page, error) {
	results, err := f.client.SearchAll(ctx, "", ObjectFilter("page"))
	if err != nil {
		return nil, fmt.Errorf("failed to search pages: %w", err)
	}
	pages := make([]workspace.Page, 0, len(results))
	seen := make(map[string]bool, len(results))
	for i := range results {
		r := &results[i]
		if r.Object != "page" || r.Archived || r.InTrash {
			continue
		}
		raw := r.Page()
		p := convertPage(&raw)
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		if p.Parent, err = f.resolveParent(ctx, p.Parent); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

// FetchAllDatabases returns every database shared with the integration.
//
// With the data source API, schemas and items are attached to each
// DataSource and the returned rows are empty. With the legacy API, schemas
// are on the Database and the rows of every database are returned
// separately when opts.IncludeItems is set.
func (f *Fetcher) FetchAllDatabases(ctx context.Context, opts FetchOptions) ([]workspace.Database, []workspace.Page, error) {
	ids, err := f.databaseIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	f.progress.OnStart(len(ids))

	type fetched struct {
		db   workspace.Database
		rows []workspace.Page
	}
	slots := make([]*fetched, len(ids))
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	var done int
	for i, id := range ids {
		g.Go(func() error {
			db, rows, err := f.fetchDatabase(ctx, id, opts)
			if err != nil {
				return f.skip(err)
			}
			slots[i] = &fetched{db: db, rows: rows}
			f.mu.Lock()
			done++
			n := done
			f.mu.Unlock()
			f.progress.OnProgress(n, db.DisplayTitle())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var databases []workspace.Database
	var rows []workspace.Page
	for _, s := range slots {
		if s != nil {
			databases = append(databases, s.db)
			rows = append(rows, s.rows...)
		}
	}
	return databases, rows, nil
}

// databaseIDs lists the databases to fetch, in search order.
//
// The data source API searches data sources and groups them by database.
func (f *Fetcher) databaseIDs(ctx context.Context) ([]string, error) {
	object := "database"
	if f.client.UsesDataSources() {
		object = "data_source"
	}
	results, err := f.client.SearchAll(ctx, "", ObjectFilter(object))
	if err != nil {
		return nil, fmt.Errorf("failed to search %ss: %w", object, err)
	}
	var ids []string
	seen := make(map[string]bool)
	for i := range results {
		r := &results[i]
		if r.Object != object || r.Archived || r.InTrash {
			continue
		}
		id := r.ID
		if object == "data_source" {
			id = r.Parent.DatabaseID
		}
		if id = NormalizeID(id); id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *Fetcher) fetchDatabase(ctx context.Context, id string, opts FetchOptions) (workspace.Database, []workspace.Page, error) {
	raw, err := f.client.GetDatabase(ctx, id)
	if err != nil {
		return workspace.Database{}, nil, &FetchError{Kind: "database", ID: id, Err: err}
	}
	db := convertDatabase(raw)
	if db.Parent, err = f.resolveParent(ctx, db.Parent); err != nil {
		return workspace.Database{}, nil, err
	}

	if !f.client.UsesDataSources() {
		if !opts.IncludeSchema {
			db.Properties = nil
		}
		if !opts.IncludeItems {
			return db, nil, nil
		}
		items, err := f.client.QueryDatabaseAll(ctx, raw.ID)
		if err != nil {
			// The schema is still worth documenting without its rows.
			return db, nil, f.skip(&FetchError{Kind: "items", ID: db.ID, Err: err})
		}
		rows := make([]workspace.Page, 0, len(items))
		for i := range items {
			if !items[i].Archived && !items[i].InTrash {
				rows = append(rows, convertPage(&items[i]))
			}
		}
		f.count(func(s *FetchStats) { s.Items += len(rows) })
		return db, rows, nil
	}

	if !opts.IncludeSchema {
		return db, nil, nil
	}
	for _, ref := range raw.DataSources {
		ds, err := f.fetchDataSource(ctx, ref, db.ID, opts)
		if err != nil {
			if err := f.skip(err); err != nil {
				return workspace.Database{}, nil, err
			}
			continue
		}
		db.DataSources = append(db.DataSources, ds)
	}
	return db, nil, nil
}

func (f *Fetcher) fetchDataSource(ctx context.Context, ref DataSourceRef, databaseID string, opts FetchOptions) (workspace.DataSource, error) {
	raw, err := f.client.GetDataSource(ctx, ref.ID)
	if err != nil {
		return workspace.DataSource{}, &FetchError{Kind: "data source", ID: ref.ID, Err: err}
	}
	ds := convertDataSource(raw, ref, databaseID)
	f.count(func(s *FetchStats) { s.DataSources++ })
	if !opts.IncludeItems {
		return ds, nil
	}
	items, err := f.client.QueryDataSourceAll(ctx, raw.ID)
	if err != nil {
		return ds, f.skip(&FetchError{Kind: "items", ID: ds.ID, Err: err})
	}
	for i := range items {
		if !items[i].Archived && !items[i].InTrash {
			ds.Pages = append(ds.Pages, convertPage(&items[i]))
		}
	}
	f.count(func(s *FetchStats) { s.Items += len(ds.Pages) })
	return ds, nil
}

// resolveParent walks up block parents until a page, database or
// workspace is found. Unresolvable blocks keep their block parent, which
// makes the child a root.
func (f *Fetcher) resolveParent(ctx context.Context, p workspace.Parent) (workspace.Parent, error) {
	if p.Type != workspace.ParentBlock || p.ID == "" {
		return p, nil
	}
	start := p.ID
	f.mu.Lock()
	cached, ok := f.blockParents[start]
	f.mu.Unlock()
	if ok {
		return cached, nil
	}
	cur := p
	for range maxBlockHops {
		if cur.Type != workspace.ParentBlock {
			break
		}
		b, err := f.client.GetBlock(ctx, cur.ID)
		if err != nil {
			if err := f.skip(&FetchError{Kind: "block", ID: cur.ID, Err: err}); err != nil {
				return p, err
			}
			cur = p
			break
		}
		cur = convertParent(b.Parent)
	}
	if cur.Type == workspace.ParentBlock {
		cur = p
	}
	f.mu.Lock()
	f.blockParents[start] = cur
	f.mu.Unlock()
	return cur, nil
}

// skip reports err as a warning and returns nil, unless err must abort the
// fetch.
func (f *Fetcher) skip(err error) error {
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	f.progress.OnWarning(err.Error())
	f.count(func(s *FetchStats) { s.Skipped++ })
	return nil
}

func (f *Fetcher) count(fn func(s *FetchStats)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.stats)
}
