// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/listensync/internal/services"
)

// MockSearcher is a test double for [services.Searcher] keyed by query.
type MockSearcher struct {
	mu      sync.Mutex
	Results map[string][]services.SearchResult
	Err     error
	Queries []string
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]services.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[query], nil
}

func (m *MockSearcher) Name() string { return "mock" }

// MockCommandRunner is a test double for downloader.CommandRunner.
//
// It prints a deemix completion line for every URL not listed in Fail.
type MockCommandRunner struct {
	mu    sync.Mutex
	Fail  map[string]bool
	Calls [][]string
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, append([]string{name}, args...))

	url := args[len(args)-1]
	if m.Fail[url] {
		return nil, []byte("download failed"), errors.New("exit status 1")
	}
	id := url[strings.LastIndex(url, "/")+1:]
	return []byte(fmt.Sprintf("Completed download of /music/track-%s.mp3\n", id)), nil, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
