// Tests for the Notion API client.

package notion

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeNotion serves canned responses keyed by "METHOD /path". Search
// requests are keyed by "POST /search?<filter>[&<cursor>]".
type fakeNotion struct {
	mu      sync.Mutex
	routes  map[string]fakeResponse
	hits    map[string]int
	headers http.Header
}

type fakeResponse struct {
	status int
	body   string
	header map[string]string
	// once makes the response apply to the first hit only; later hits get
	// a 200 with body.
	once bool
}

func newFakeNotion(t *testing.T, version string, routes map[string]fakeResponse) (*fakeNotion, *Client) {
	t.Helper()
	f := &fakeNotion{routes: routes, hits: make(map[string]int)}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c := NewClient("secret", ClientOptions{APIVersion: version, BaseURL: srv.URL, RequestsPerSecond: -1})
	return f, c
}

func ok(body string) fakeResponse {
	return fakeResponse{status: http.StatusOK, body: body}
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	if r.URL.Path == "/search" {
		var req SearchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Filter != nil {
			key += "?" + req.Filter.Value
		}
		if req.StartCursor != "" {
			key += "&" + req.StartCursor
		}
	}
	f.mu.Lock()
	f.hits[key]++
	n := f.hits[key]
	f.headers = r.Header.Clone()
	resp, found := f.routes[key]
	f.mu.Unlock()
	if !found {
		resp = fakeResponse{status: http.StatusNotFound, body: `{"object":"error","status":404,"code":"object_not_found","message":"Could not find ` + r.URL.Path + `"}`}
	}
	if resp.once && n > 1 {
		resp.status = http.StatusOK
	}
	for k, v := range resp.header {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeNotion) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func TestClientHeaders(t *testing.T) {
	for _, version := range []string{APIVersionLegacy, APIVersionDataSources} {
		t.Run(version, func(t *testing.T) {
			f, c := newFakeNotion(t, version, map[string]fakeResponse{
				"GET /users/me": ok(`{"object":"user","id":"u1","type":"bot","bot":{"workspace_name":"Acme"}}`),
			})
			u, err := c.Me(t.Context())
			if err != nil {
				t.Fatal(err)
			}
			if u.Bot == nil || u.Bot.WorkspaceName != "Acme" {
				t.Errorf("Me() = %+v", u)
			}
			if got := f.headers.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Authorization = %q", got)
			}
			if got := f.headers.Get("Notion-Version"); got != version {
				t.Errorf("Notion-Version = %q, want %q", got, version)
			}
			if got := c.UsesDataSources(); got != (version == APIVersionDataSources) {
				t.Errorf("UsesDataSources() = %v", got)
			}
		})
	}
}

func TestClientDefaults(t *testing.T) {
	c := NewClient("secret", ClientOptions{})
	if c.APIVersion() != APIVersionDataSources {
		t.Errorf("APIVersion() = %q", c.APIVersion())
	}
	if c.baseURL != BaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}

func TestClientErrors(t *testing.T) {
	_, c := newFakeNotion(t, APIVersionDataSources, map[string]fakeResponse{
		"GET /users/me":        {status: http.StatusUnauthorized, body: `{"object":"error","status":401,"code":"unauthorized","message":"API token is invalid."}`},
		"GET /databases/plain": {status: http.StatusBadRequest, body: `not json`},
	})

	_, err := c.Me(t.Context())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Me() error = %v, want ErrUnauthorized", err)
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Message != "API token is invalid." {
		t.Errorf("Me() error = %#v", err)
	}
	if !strings.Contains(err.Error(), "NOTION_TOKEN") {
		t.Errorf("AuthError message is not actionable: %q", err)
	}

	_, err = c.GetDatabase(t.Context(), "missing")
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "object_not_found" || apiErr.Status != http.StatusNotFound {
		t.Errorf("GetDatabase() error = %#v", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("not found matched ErrUnauthorized")
	}

	_, err = c.GetDatabase(t.Context(), "plain")
	if !errors.As(err, &apiErr) || apiErr.Message != "not json" || apiErr.Status != http.StatusBadRequest {
		t.Errorf("GetDatabase() error = %#v", err)
	}
}

func TestClientRetry(t *testing.T) {
	f, c := newFakeNotion(t, APIVersionDataSources, map[string]fakeResponse{
		"GET /blocks/b1": {
			status: http.StatusTooManyRequests,
			body:   `{"object":"block","id":"b1","type":"paragraph","parent":{"type":"page_id","page_id":"p1"}}`,
			header: map[string]string{"Retry-After": "1"},
			once:   true,
		},
	})
	b, err := c.GetBlock(t.Context(), "b1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Parent.PageID != "p1" {
		t.Errorf("GetBlock() = %+v", b)
	}
	if got := f.hitCount("GET /blocks/b1"); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
}

func TestSearchAllPagination(t *testing.T) {
	_, c := newFakeNotion(t, APIVersionDataSources, map[string]fakeResponse{
		"POST /search?page":    ok(`{"object":"list","results":[{"object":"page","id":"a"}],"has_more":true,"next_cursor":"c1"}`),
		"POST /search?page&c1": ok(`{"object":"list","results":[{"object":"page","id":"b"}],"has_more":false,"next_cursor":null}`),
	})
	results, err := c.SearchAll(t.Context(), "", ObjectFilter("page"))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("SearchAll() = %+v", results)
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "1s"},
		{"3", "3s"},
		{"-1", "1s"},
		{"soon", "1s"},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.in).String(); got != tt.want {
			t.Errorf("retryAfter(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
