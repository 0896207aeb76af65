package station

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// HTTPClient is the subset of http.Client used for side channel requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var defaultHTTPClient HTTPClient = &http.Client{Timeout: 10 * time.Second}

// phaseDescriptorWire is one entry of the phase descriptor listing a
// station backend serves at /tests/<id>/phases.
type phaseDescriptorWire struct {
	Name string `json:"name"`
}

// descriptorCache fetches the declared phase list per test id and keeps
// it for the lifetime of one station target. Only successful fetches are
// cached; a failed fetch is retried on the next lookup.
type descriptorCache struct {
	client HTTPClient
	host   string
	port   int

	mu      sync.Mutex
	entries map[string][]string
}

func newDescriptorCache(client HTTPClient, host string, port int) *descriptorCache {
	return &descriptorCache{
		client:  client,
		host:    host,
		port:    port,
		entries: make(map[string][]string),
	}
}

// descriptors returns the declared phase names for a test id, or nil if
// they could not be fetched.
func (c *descriptorCache) descriptors(testID string) []string {
	c.mu.Lock()
	names, ok := c.entries[testID]
	c.mu.Unlock()
	if ok {
		return names
	}

	names, err := c.fetch(testID)
	if err != nil {
		return nil
	}

	c.mu.Lock()
	c.entries[testID] = names
	c.mu.Unlock()
	return names
}

func (c *descriptorCache) fetch(testID string) ([]string, error) {
	url := fmt.Sprintf("http://%s:%d/tests/%s/phases", c.host, c.port, testID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("phase descriptors: unexpected status %d", resp.StatusCode)
	}

	var wires []phaseDescriptorWire
	if err := json.NewDecoder(resp.Body).Decode(&wires); err != nil {
		return nil, fmt.Errorf("phase descriptors: %w", err)
	}

	names := make([]string, 0, len(wires))
	for _, w := range wires {
		names = append(names, w.Name)
	}
	return names, nil
}
