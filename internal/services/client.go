package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "http://localhost:8080"

// TokenSource reads the session token from durable storage. [repositories.Storage] satisfies it.
type TokenSource interface {
	Get(key string) (string, bool, error)
}

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	BaseURL           string
	HTTPClient        *http.Client
	Tokens            TokenSource
	Timeout           time.Duration
	RequestsPerSecond float64
	Logger            *log.Logger
}

// Client makes JSON requests to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	timeout    time.Duration
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewClient creates a new backend client.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		tokens:     opts.Tokens,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// RequestOptions carries the optional parts of a request.
type RequestOptions struct {
	Body    any
	Query   url.Values
	Headers http.Header
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Request sends a request and returns the response payload with any envelope removed.
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions) (json.RawMessage, error) {
	status, body, err := c.send(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		apiErr := &shared.APIError{Status: status, Message: errorField(body)}
		c.logger.Error("API Error", "method", method, "path", path, "status", status, "error", apiErr.Message)
		return nil, apiErr
	}

	data, err := unwrapEnvelope(status, body)
	if err != nil {
		c.logger.Error("API Error", "method", method, "path", path, "status", status, "error", err)
		return nil, err
	}
	return data, nil
}

// Do sends a request and decodes the payload into out. A nil out discards the payload.
func (c *Client) Do(ctx context.Context, method, path string, opts RequestOptions, out any) error {
	data, err := c.Request(ctx, method, path, opts)
	if err != nil {
		return err
	}
	if out == nil || len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// Raw performs a request and returns the response whatever its status. Only transport failures are errors.
func (c *Client) Raw(ctx context.Context, method, path string) (*APIResponse, error) {
	req, err := c.newRequest(ctx, method, path, RequestOptions{})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &shared.NetworkError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func (c *Client) send(ctx context.Context, method, path string, opts RequestOptions) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, &shared.NetworkError{Err: err}
		}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API Error", "method", method, "path", path, "error", err)
		return 0, nil, &shared.NetworkError{Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("API Error", "method", method, "path", path, "error", err)
		return 0, nil, &shared.NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("API response", "method", method, "path", path, "status", resp.StatusCode,
		"bytes", len(body), "request_id", req.Header.Get("X-Request-ID"))
	return resp.StatusCode, body, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions) (*http.Request, error) {
	fullURL := c.baseURL + path
	if len(opts.Query) > 0 {
		fullURL += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts.Body != nil {
		data, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to encode request body: %v", shared.ErrInvalidInput, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token := c.token(); token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return req, nil
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	token, ok, err := c.tokens.Get(repositories.KeyToken)
	if err != nil {
		c.logger.Warn("failed to read token from storage", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// errorField extracts the "error" field of a JSON body, falling back to the generic message.
func errorField(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Error) == "" {
		return shared.DefaultAPIErrorMessage
	}
	return payload.Error
}

// unwrapEnvelope returns the data of a {success, data, error} envelope, or the body itself when it is not one.
func unwrapEnvelope(status int, body []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return json.RawMessage(trimmed), nil
	}

	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON response: %v", shared.ErrAPIRequest, err)
	}
	if envelope.Success == nil {
		return json.RawMessage(trimmed), nil
	}
	if !*envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = shared.DefaultAPIErrorMessage
		}
		return nil, &shared.APIError{Status: status, Message: msg}
	}
	return envelope.Data, nil
}
