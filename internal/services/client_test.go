package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/shared"
	tu "github.com/desertthunder/shelf/internal/testing"
)

func newTestClient(baseURL string, tokens TokenSource) *Client {
	return NewClient(ClientOpts{BaseURL: baseURL, Tokens: tokens, Logger: shared.NewLogger(io.Discard)})
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewClient(ClientOpts{})
			if c.baseURL != "http://localhost:8080" {
				t.Errorf("expected default baseURL, got %s", c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if c.limiter != nil {
				t.Error("expected no limiter without requests_per_second")
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := NewClient(ClientOpts{BaseURL: "http://example.com/", RequestsPerSecond: 2})
			if c.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL, got %s", c.baseURL)
			}
			if c.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Headers", func(t *testing.T) {
		t.Run("Injects Bearer Token From Storage", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, []any{})
			storage := repositories.NewMemoryStorage()
			storage.Set(repositories.KeyToken, "abc123")

			c := newTestClient(srv.URL, storage)
			if _, err := c.Request(context.Background(), http.MethodGet, "/api/books", RequestOptions{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			req := srv.Last(t)
			if got := req.Header.Get("Authorization"); got != "Bearer abc123" {
				t.Errorf("expected bearer header, got %q", got)
			}
			if got := req.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("expected JSON content type, got %q", got)
			}
			if req.Header.Get("X-Request-ID") == "" {
				t.Error("expected request id header")
			}
		})

		t.Run("Reads Token On Every Call", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, nil)
			storage := repositories.NewMemoryStorage()
			c := newTestClient(srv.URL, storage)

			c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{})
			storage.Set(repositories.KeyToken, "later")
			c.Request(context.Background(), http.MethodGet, "/b", RequestOptions{})

			reqs := srv.Requests()
			if len(reqs) != 2 {
				t.Fatalf("expected 2 requests, got %d", len(reqs))
			}
			if reqs[0].Header.Get("Authorization") != "" {
				t.Error("first request should carry no token")
			}
			if reqs[1].Header.Get("Authorization") != "Bearer later" {
				t.Errorf("second request should carry the new token, got %q", reqs[1].Header.Get("Authorization"))
			}
		})

		t.Run("No Token Header When Storage Fails", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, nil)
			c := newTestClient(srv.URL, &tu.FailingStorage{Err: errors.New("disk")})

			if _, err := c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv.Last(t).Header.Get("Authorization") != "" {
				t.Error("expected no Authorization header")
			}
		})

		t.Run("Caller Headers Win", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, nil)
			c := newTestClient(srv.URL, nil)

			headers := http.Header{}
			headers.Set("Content-Type", "text/plain")
			headers.Set("X-Extra", "1")
			c.Request(context.Background(), http.MethodPost, "/a", RequestOptions{Body: "x", Headers: headers})

			req := srv.Last(t)
			if req.Header.Get("Content-Type") != "text/plain" {
				t.Errorf("expected caller content type, got %q", req.Header.Get("Content-Type"))
			}
			if req.Header.Get("X-Extra") != "1" {
				t.Error("expected extra header")
			}
		})
	})

	t.Run("Request", func(t *testing.T) {
		t.Run("Sends JSON Body And Query", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, map[string]any{"ok": true})
			c := newTestClient(srv.URL, nil)

			body := map[string]string{"email": "a@b.co"}
			data, err := c.Request(context.Background(), http.MethodPost, "/api/auth/login", RequestOptions{
				Body:  body,
				Query: map[string][]string{"q": {"dune"}},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(string(data), `"ok":true`) {
				t.Errorf("unexpected payload %s", data)
			}

			req := srv.Last(t)
			if req.Method != http.MethodPost || req.Path != "/api/auth/login" {
				t.Errorf("unexpected request %s %s", req.Method, req.Path)
			}
			if req.Query != "q=dune" {
				t.Errorf("unexpected query %q", req.Query)
			}
			if !strings.Contains(string(req.Body), `"email":"a@b.co"`) {
				t.Errorf("unexpected body %s", req.Body)
			}
		})

		t.Run("Unwraps Envelope", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, `{"success":true,"data":{"id":"1"}}`)
			c := newTestClient(srv.URL, nil)

			data, err := c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(data) != `{"id":"1"}` {
				t.Errorf("expected envelope data, got %s", data)
			}
		})

		t.Run("Envelope Failure On 2xx", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, `{"success":false,"error":"Book already exists"}`)
			c := newTestClient(srv.URL, nil)

			_, err := c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{})
			var apiErr *shared.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Message != "Book already exists" {
				t.Errorf("unexpected message %q", apiErr.Message)
			}
		})

		t.Run("Non-2xx Uses Error Field", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusUnauthorized, `{"success":false,"error":"Invalid credentials"}`)
			c := newTestClient(srv.URL, nil)

			_, err := c.Request(context.Background(), http.MethodPost, "/api/auth/login", RequestOptions{})
			var apiErr *shared.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", apiErr.Status)
			}
			if apiErr.Message != "Invalid credentials" {
				t.Errorf("unexpected message %q", apiErr.Message)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected APIError to match ErrAPIRequest")
			}
		})

		t.Run("Non-2xx Without Error Field", func(t *testing.T) {
			for _, body := range []string{"", "<html>oops</html>", `{"message":"nope"}`} {
				srv := tu.NewRecordingServer(t, http.StatusInternalServerError, body)
				c := newTestClient(srv.URL, nil)

				_, err := c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{})
				var apiErr *shared.APIError
				if !errors.As(err, &apiErr) {
					t.Fatalf("expected APIError for %q, got %v", body, err)
				}
				if apiErr.Message != "Something went wrong" {
					t.Errorf("expected default message for %q, got %q", body, apiErr.Message)
				}
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			c := NewClient(ClientOpts{
				BaseURL:    "http://example.com",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
				Logger:     shared.NewLogger(io.Discard),
			})

			_, err := c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{})
			var netErr *shared.NetworkError
			if !errors.As(err, &netErr) {
				t.Fatalf("expected NetworkError, got %v", err)
			}
			if !errors.Is(err, shared.ErrNetwork) {
				t.Error("expected NetworkError to match ErrNetwork")
			}
			if !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("expected cause in message, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			c := NewClient(ClientOpts{
				BaseURL:    "http://example.com",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)},
				Logger:     shared.NewLogger(io.Discard),
			})

			_, err := c.Request(context.Background(), http.MethodGet, "/a", RequestOptions{})
			if !errors.Is(err, shared.ErrNetwork) {
				t.Fatalf("expected network error, got %v", err)
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, nil)
			c := newTestClient(srv.URL, nil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := c.Request(ctx, http.MethodGet, "/a", RequestOptions{})
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled in chain, got %v", err)
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Decodes Payload", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, `{"success":true,"data":[{"id":"1","title":"Dune"}]}`)
			c := newTestClient(srv.URL, nil)

			var out []struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			}
			if err := c.Do(context.Background(), http.MethodGet, "/a", RequestOptions{}, &out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(out) != 1 || out[0].Title != "Dune" {
				t.Errorf("unexpected decode %+v", out)
			}
		})

		t.Run("Decode Failure", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, `"not an object"`)
			c := newTestClient(srv.URL, nil)

			var out struct{ ID string }
			err := c.Do(context.Background(), http.MethodGet, "/a", RequestOptions{}, &out)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Empty Body With Target", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusNoContent, nil)
			c := newTestClient(srv.URL, nil)

			var out struct{ ID string }
			if err := c.Do(context.Background(), http.MethodDelete, "/a", RequestOptions{}, &out); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	})

	t.Run("Raw", func(t *testing.T) {
		t.Run("Returns Non-2xx Without Error", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusNotFound, `{"error":"missing"}`)
			c := newTestClient(srv.URL, nil)

			resp, err := c.Raw(context.Background(), http.MethodGet, "/missing")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("expected 404, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected JSON data")
			}
		})

		t.Run("Non-JSON Body", func(t *testing.T) {
			srv := tu.NewRecordingServer(t, http.StatusOK, "plain text")
			c := newTestClient(srv.URL, nil)

			resp, err := c.Raw(context.Background(), http.MethodGet, "/")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.IsJSON {
				t.Error("expected non-JSON response")
			}
			if string(resp.Body) != "plain text" {
				t.Errorf("unexpected body %q", resp.Body)
			}
		})
	})

	t.Run("Limiter", func(t *testing.T) {
		srv := tu.NewRecordingServer(t, http.StatusOK, nil)
		c := NewClient(ClientOpts{BaseURL: srv.URL, RequestsPerSecond: 20, Logger: shared.NewLogger(io.Discard)})

		start := time.Now()
		for range 3 {
			if _, err := c.Request(context.Background(), http.MethodGet, "/", RequestOptions{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("expected throttled requests, finished in %v", elapsed)
		}
		if len(srv.Requests()) != 3 {
			t.Errorf("expected 3 requests, got %d", len(srv.Requests()))
		}
	})
}
