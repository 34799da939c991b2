// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
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

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
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

// FailingStorage is a key-value store whose every call fails with Err
type FailingStorage struct {
	Err error
}

func (f *FailingStorage) Get(string) (string, bool, error) { return "", false, f.Err }
func (f *FailingStorage) Set(string, string) error         { return f.Err }
func (f *FailingStorage) Remove(string) error              { return f.Err }
func (f *FailingStorage) Close() error                     { return nil }

// KeyFailingStorage wraps a store and fails writes and removals of Key with Err
type KeyFailingStorage struct {
	Inner interface {
		Get(key string) (string, bool, error)
		Set(key, value string) error
		Remove(key string) error
		Close() error
	}
	Key string
	Err error
}

func (k *KeyFailingStorage) Get(key string) (string, bool, error) { return k.Inner.Get(key) }
func (k *KeyFailingStorage) Close() error                         { return k.Inner.Close() }

func (k *KeyFailingStorage) Set(key, value string) error {
	if key == k.Key {
		return k.Err
	}
	return k.Inner.Set(key, value)
}

func (k *KeyFailingStorage) Remove(key string) error {
	if key == k.Key {
		return k.Err
	}
	return k.Inner.Remove(key)
}

// RecordedRequest is a request captured by [NewRecordingServer]
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// RecordingServer serves a fixed response and records every request it receives
type RecordingServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// Requests returns a copy of the recorded requests
func (s *RecordingServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Last returns the most recent request, failing the test when there is none
func (s *RecordingServer) Last(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("expected at least one request")
	}
	return reqs[len(reqs)-1]
}

// NewRecordingServer starts a server replying with status and the JSON encoding of body.
// A string body is written as-is.
func NewRecordingServer(t *testing.T, status int, body any) *RecordingServer {
	t.Helper()
	rs := &RecordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rs.mu.Lock()
		rs.requests = append(rs.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   data,
		})
		rs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch b := body.(type) {
		case nil:
		case string:
			io.WriteString(w, b)
		default:
			json.NewEncoder(w).Encode(b)
		}
	}))
	t.Cleanup(rs.Close)
	return rs
}
