// Implements the Notion API client with request pacing.

package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the Notion API base URL.
	BaseURL = "https://api.notion.com/v1"
	// APIVersionLegacy is the API version where databases carry their schema.
	APIVersionLegacy = "2022-06-28"
	// APIVersionDataSources is the API version where databases are
	// containers of data sources.
	APIVersionDataSources = "2025-09-03"
	// DefaultRequestsPerSecond is the average rate allowed by Notion.
	DefaultRequestsPerSecond = 3.0

	maxAttempts = 3
	pageSize    = 100
)

// ClientOptions configures a Client. Zero values select the defaults.
type ClientOptions struct {
	// APIVersion is APIVersionLegacy or APIVersionDataSources (default).
	APIVersion string
	// BaseURL overrides the API endpoint.
	BaseURL string
	// RequestsPerSecond paces requests; negative disables pacing.
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client is a rate-limited Notion API client. It is safe for concurrent use.
type Client struct {
	token      string
	version    string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Notion API client.
func NewClient(token string, opts ClientOptions) *Client {
	c := &Client{
		token:      token,
		version:    opts.APIVersion,
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
	}
	if c.version == "" {
		c.version = APIVersionDataSources
	}
	if c.baseURL == "" {
		c.baseURL = BaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	switch rps := opts.RequestsPerSecond; {
	case rps < 0:
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	case rps == 0:
		c.limiter = rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1)
	default:
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

// APIVersion returns the Notion-Version header sent with every request.
func (c *Client) APIVersion() string {
	return c.version
}

// UsesDataSources reports whether the client talks to the data source API.
func (c *Client) UsesDataSources() bool {
	return c.version != APIVersionLegacy
}

// do performs an HTTP request with pacing. 429 and transient 5xx responses
// are retried, honoring Retry-After.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}
	for attempt := 1; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		respBody, wait, err := c.doOnce(ctx, method, path, data)
		if wait == 0 || attempt == maxAttempts {
			return respBody, err
		}
		slog.DebugContext(ctx, "Retrying Notion request", "path", path, "attempt", attempt, "wait", wait, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// doOnce performs one request. A non-zero wait means the request can be
// retried after that delay.
func (c *Client) doOnce(ctx context.Context, method, path string, data []byte) ([]byte, time.Duration, error) {
	var bodyReader io.Reader
	if data != nil {
		bodyReader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", c.version)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 400 {
		return respBody, 0, nil
	}

	apiErr := &Error{Status: resp.StatusCode}
	if err := json.Unmarshal(respBody, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(bytes.TrimSpace(respBody))
	}
	if apiErr.Status == 0 {
		apiErr.Status = resp.StatusCode
	}
	if resp.StatusCode == http.StatusUnauthorized || apiErr.Code == "unauthorized" {
		return nil, 0, &AuthError{Status: resp.StatusCode, Message: apiErr.Message}
	}
	if isRetryable(resp.StatusCode) {
		return nil, retryAfter(resp.Header.Get("Retry-After")), apiErr
	}
	return nil, 0, apiErr
}

// retryAfter parses a Retry-After header in seconds, defaulting to 1s.
func retryAfter(v string) time.Duration {
	if s, err := strconv.Atoi(v); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	return time.Second
}

// get performs a GET request and decodes the response into out.
func (c *Client) get(ctx context.Context, path, what string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", what, err)
	}
	return nil
}

// post performs a POST request and decodes the response into out.
func (c *Client) post(ctx context.Context, path, what string, body, out any) error {
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", what, err)
	}
	return nil
}

// paginate follows next_cursor until the last page.
func paginate[T any](fetch func(cursor string) (*PaginatedResponse[T], error)) ([]T, error) {
	var all []T
	var cursor string
	for {
		resp, err := fetch(cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return all, nil
		}
		cursor = *resp.NextCursor
	}
}

// SearchFilter defines filters for the search endpoint.
type SearchFilter struct {
	Value    string `json:"value"`    // "page", "database" (legacy) or "data_source"
	Property string `json:"property"` // "object"
}

// SearchRequest is the request body for the search endpoint.
type SearchRequest struct {
	Query       string        `json:"query,omitempty"`
	Filter      *SearchFilter `json:"filter,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
}

// Search searches for pages and databases or data sources.
func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	if req.PageSize == 0 {
		req.PageSize = pageSize
	}
	var resp SearchResponse
	if err := c.post(ctx, "/search", "search", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchAll returns every search result, handling pagination.
func (c *Client) SearchAll(ctx context.Context, query string, filter *SearchFilter) ([]SearchResult, error) {
	return paginate(func(cursor string) (*SearchResponse, error) {
		return c.Search(ctx, &SearchRequest{Query: query, Filter: filter, StartCursor: cursor, PageSize: pageSize})
	})
}

// ObjectFilter returns the search filter selecting one object type.
func ObjectFilter(object string) *SearchFilter {
	return &SearchFilter{Value: object, Property: "object"}
}

// GetDatabase retrieves a database by ID.
func (c *Client) GetDatabase(ctx context.Context, id string) (*Database, error) {
	var db Database
	if err := c.get(ctx, "/databases/"+url.PathEscape(id), "database", &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// GetDataSource retrieves a data source by ID. It requires
// APIVersionDataSources.
func (c *Client) GetDataSource(ctx context.Context, id string) (*DataSource, error) {
	var ds DataSource
	if err := c.get(ctx, "/data_sources/"+url.PathEscape(id), "data source", &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// queryRequest is the body of the query endpoints.
type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// QueryDatabaseAll returns every row of a legacy database, handling
// pagination.
func (c *Client) QueryDatabaseAll(ctx context.Context, databaseID string) ([]Page, error) {
	return c.queryAll(ctx, "/databases/"+url.PathEscape(databaseID)+"/query")
}

// QueryDataSourceAll returns every row of a data source, handling
// pagination.
func (c *Client) QueryDataSourceAll(ctx context.Context, dataSourceID string) ([]Page, error) {
	return c.queryAll(ctx, "/data_sources/"+url.PathEscape(dataSourceID)+"/query")
}

func (c *Client) queryAll(ctx context.Context, path string) ([]Page, error) {
	return paginate(func(cursor string) (*QueryResponse, error) {
		var resp QueryResponse
		if err := c.post(ctx, path, "query", &queryRequest{StartCursor: cursor, PageSize: pageSize}, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

// GetBlock retrieves a block by ID.
func (c *Client) GetBlock(ctx context.Context, id string) (*Block, error) {
	var b Block
	if err := c.get(ctx, "/blocks/"+url.PathEscape(id), "block", &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Me returns the bot user of the integration token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/users/me", "user", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
