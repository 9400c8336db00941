package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type catalogRoute struct {
	status int
	body   string
}

// CatalogServer is an httptest server that answers catalog routes from
// canned JSON bodies and counts how often each path was requested.
// Unregistered paths answer 404.
type CatalogServer struct {
	*httptest.Server

	mu      sync.Mutex
	routes  map[string]catalogRoute
	hits    map[string]int
	queries map[string][]url.Values
	agents  []string
}

// NewCatalogServer starts a CatalogServer that is closed when the test completes.
func NewCatalogServer(t *testing.T) *CatalogServer {
	t.Helper()

	c := &CatalogServer{
		routes:  make(map[string]catalogRoute),
		hits:    make(map[string]int),
		queries: make(map[string][]url.Values),
	}
	c.Server = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.Close)

	return c
}

// Handle registers a 200 response for path.
func (c *CatalogServer) Handle(path, body string) {
	c.HandleStatus(path, http.StatusOK, body)
}

// HandleStatus registers a response with an explicit status code for path.
func (c *CatalogServer) HandleStatus(path string, status int, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes[path] = catalogRoute{status: status, body: body}
}

// Hits returns how many requests reached path.
func (c *CatalogServer) Hits(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits[path]
}

// Queries returns the query strings received for path, in arrival order.
func (c *CatalogServer) Queries(path string) []url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]url.Values(nil), c.queries[path]...)
}

// UserAgents returns every User-Agent header the server has seen.
func (c *CatalogServer) UserAgents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.agents...)
}

func (c *CatalogServer) serve(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.hits[r.URL.Path]++
	c.queries[r.URL.Path] = append(c.queries[r.URL.Path], r.URL.Query())
	c.agents = append(c.agents, r.UserAgent())
	route, ok := c.routes[r.URL.Path]
	c.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.status)
	_, _ = w.Write([]byte(route.body))
}
