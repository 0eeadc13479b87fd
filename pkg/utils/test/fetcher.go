package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/frontier/pkg/page"
)

// MockFetcher serves pages from a map keyed by URL.
type MockFetcher struct {
	Pages map[string]*page.Page

	mu      sync.Mutex
	fetched []string
}

// NewMockFetcher creates a fetcher serving pages.
func NewMockFetcher(pages map[string]*page.Page) *MockFetcher {
	return &MockFetcher{Pages: pages}
}

func (f *MockFetcher) Fetch(_ context.Context, url string) (*page.Page, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	p, ok := f.Pages[url]
	if !ok {
		return nil, fmt.Errorf("fetching %s: not found", url)
	}
	cp := *p
	cp.URL = url
	return &cp, nil
}

// Fetched returns the URLs requested so far, in order.
func (f *MockFetcher) Fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}
