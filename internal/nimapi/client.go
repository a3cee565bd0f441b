package nimapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nimctl/internal/sse"
	"nimctl/pkg/types"
)

// DefaultLocalURL is where the containerized server publishes its
// OpenAI-compatible API.
const DefaultLocalURL = "http://localhost:8000"

// DefaultHostedURL is the hosted inference endpoint; requests there carry a
// Bearer token from NVIDIA_API_KEY.
const DefaultHostedURL = "https://integrate.api.nvidia.com"

// APIError is a non-2xx response, surfaced with the raw body text so the
// operator can read exactly what the server said.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// StatusCode implements the HTTPError interface used by the proxy layer.
func (e *APIError) StatusCode() int { return e.Status }

// Client is a thin client for an OpenAI-compatible inference API.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets a Bearer token sent on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

// New creates a client for the given base URL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ListModels returns the models the server currently serves. Adapters appear
// as additional entries next to the base model once the server's background
// scan has picked them up.
func (c *Client) ListModels(ctx context.Context) (*types.ModelList, error) {
	resp, err := c.send(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var ml types.ModelList
	if err := json.NewDecoder(resp.Body).Decode(&ml); err != nil {
		return nil, fmt.Errorf("decode models response: %w", err)
	}
	return &ml, nil
}

// ChatCompletion sends a non-streaming chat request and returns the full
// response.
func (c *Client) ChatCompletion(ctx context.Context, req types.ChatCompletionRequest) (*types.ChatCompletionResponse, error) {
	req.Stream = false
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/v1/chat/completions", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var cr types.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	return &cr, nil
}

// ChatCompletionStream sends a streaming chat request. Each partial content
// fragment is passed to onDelta as it arrives; the concatenation of all
// fragments is returned once the stream ends. onDelta may be nil.
func (c *Client) ChatCompletionStream(ctx context.Context, req types.ChatCompletionRequest, onDelta func(string)) (string, error) {
	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	resp, err := c.send(ctx, http.MethodPost, "/v1/chat/completions", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var full strings.Builder
	s := sse.NewScanner(resp.Body)
	for s.Scan() {
		data := s.Data()
		if data == "" {
			continue
		}
		if data == sse.DoneSentinel {
			break
		}
		var chunk types.ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return full.String(), fmt.Errorf("decode stream chunk: %w", err)
		}
		for _, ch := range chunk.Choices {
			if ch.Delta.Content == "" {
				continue
			}
			full.WriteString(ch.Delta.Content)
			if onDelta != nil {
				onDelta(ch.Delta.Content)
			}
		}
	}
	if err := s.Err(); err != nil {
		return full.String(), fmt.Errorf("read stream: %w", err)
	}
	return full.String(), nil
}

// Ready issues one GET /v1/health/ready probe and returns the status code.
// A transport failure returns 0 and the error.
func (c *Client) Ready(ctx context.Context) (int, error) {
	resp, err := c.send(ctx, http.MethodGet, "/v1/health/ready", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("request creation error: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// checkStatus drains the body into an APIError on non-2xx responses.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	return &APIError{Status: resp.StatusCode, Body: string(b)}
}

// probeTimeout bounds a single readiness probe so a stuck upstream cannot
// stall the poll loop past its interval.
const probeTimeout = 2 * time.Second
